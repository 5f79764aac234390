// Package lambda adapts API Gateway HTTP API (payload v2) events to the
// gateway so the same core runs as an AWS Lambda function.
package lambda

import (
	"context"
	"encoding/base64"
	"strings"

	"shortener/internal/http/gateway"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"
)

type Gateway interface {
	Handle(ctx context.Context, req gateway.Request) gateway.Response
}

type Handler struct {
	gw  Gateway
	log zerolog.Logger
}

func NewHandler(gw Gateway, log zerolog.Logger) *Handler {
	return &Handler{gw: gw, log: log.With().Str("component", "lambda").Logger()}
}

// Handle is the function registered with lambda.Start.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	req := gateway.Request{
		Method:    event.RequestContext.HTTP.Method,
		ShortCode: event.PathParameters["short_code"],
		Host:      header(event.Headers, "Host"),
	}

	h.log.Info().
		Str("request_id", event.RequestContext.RequestID).
		Str("method", req.Method).
		Str("route", event.RouteKey).
		Str("short_code", req.ShortCode).
		Str("host", req.Host).
		Int("body_bytes", len(event.Body)).
		Msg("received event")

	var body []byte
	switch {
	case event.Body == "":
	case event.IsBase64Encoded:
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			h.log.Warn().Err(err).Msg("body is not valid base64")
			break
		}
		body = decoded
	default:
		body = []byte(event.Body)
	}
	req.Body = body

	resp := h.gw.Handle(ctx, req)

	return events.APIGatewayV2HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       string(resp.Body),
	}, nil
}

// header looks a header up case-insensitively; HTTP APIs lower-case names.
func header(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

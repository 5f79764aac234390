// Package gateway turns a transport-neutral request into a transport-neutral
// response. The HTTP handlers and the Lambda adapter both sit in front of it.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"shortener/internal/domain/models"
	"shortener/internal/http/dto"
	"shortener/internal/http/httputils"

	"github.com/rs/zerolog"
)

const (
	MsgInvalidURL       = "Invalid URL"
	MsgMissingCode      = "Missing short code"
	MsgNotFound         = "URL not found"
	MsgMethodNotAllowed = "Method not allowed"
	MsgInternal         = "Internal server error"
)

type (
	Request struct {
		Method    string
		Body      []byte
		ShortCode string
		Host      string
	}

	Response struct {
		StatusCode int
		Headers    map[string]string
		Body       []byte
	}
)

//go:generate mockgen -destination=../../mocks/mock_url_shortener.go -package=mocks shortener/internal/http/gateway ServiceURLShortener
type ServiceURLShortener interface {
	Create(ctx context.Context, longURL, host string) (models.Created, error)
	Resolve(ctx context.Context, shortCode string) (models.Link, error)
}

type Gateway struct {
	svc          ServiceURLShortener
	log          zerolog.Logger
	exposeErrors bool
}

// New builds a gateway. With exposeErrors unset, 500 bodies carry a fixed
// message and the detail only goes to the log.
func New(svc ServiceURLShortener, log zerolog.Logger, exposeErrors bool) *Gateway {
	return &Gateway{
		svc:          svc,
		log:          log.With().Str("component", "gateway").Logger(),
		exposeErrors: exposeErrors,
	}
}

// Handle never returns an error: every failure, a panic included, becomes a
// response.
func (g *Gateway) Handle(ctx context.Context, req Request) (resp Response) {
	defer func() {
		if p := recover(); p != nil {
			g.log.Error().
				Str("panic", fmt.Sprintf("%v", p)).
				Str("stack", string(debug.Stack())).
				Str("method", req.Method).
				Msg("gateway panic")
			resp = g.errorResponse(fmt.Errorf("panic: %v", p))
		}
	}()

	switch req.Method {
	case http.MethodPost:
		return g.create(ctx, req)
	case http.MethodGet:
		return g.redirect(ctx, req)
	default:
		return g.errorResponse(fmt.Errorf("%w: %s", models.ErrMethodNotAllowed, req.Method))
	}
}

func (g *Gateway) create(ctx context.Context, req Request) Response {
	var body dto.ShortenRequest
	if err := json.Unmarshal(req.Body, &body); err != nil {
		return g.errorResponse(fmt.Errorf("%w: %v", models.ErrInvalidURL, err))
	}

	created, err := g.svc.Create(ctx, body.URL, req.Host)
	if err != nil {
		return g.errorResponse(err)
	}

	g.log.Info().
		Str("short_code", created.Link.ShortCode).
		Str("long_url", created.Link.LongURL).
		Msg("link created")

	return jsonResponse(http.StatusOK, dto.ShortenResponse{ShortURL: created.ShortURL})
}

func (g *Gateway) redirect(ctx context.Context, req Request) Response {
	link, err := g.svc.Resolve(ctx, req.ShortCode)
	if err != nil {
		return g.errorResponse(err)
	}

	return Response{
		StatusCode: http.StatusMovedPermanently,
		Headers:    map[string]string{httputils.HeaderLocation: link.LongURL},
	}
}

func (g *Gateway) errorResponse(err error) Response {
	status, msg := statusFor(err)

	if status >= http.StatusInternalServerError {
		g.log.Error().Err(err).Int("status", status).Msg("request failed")
		if g.exposeErrors {
			msg = err.Error()
		}
	} else {
		g.log.Debug().Err(err).Int("status", status).Msg("request rejected")
	}

	return jsonResponse(status, dto.ErrorResponse{Error: msg})
}

// statusFor is the only place errors are mapped to status codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrInvalidURL):
		return http.StatusBadRequest, MsgInvalidURL
	case errors.Is(err, models.ErrMissingCode):
		return http.StatusBadRequest, MsgMissingCode
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, MsgNotFound
	case errors.Is(err, models.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, MsgMethodNotAllowed
	default:
		return http.StatusInternalServerError, MsgInternal
	}
}

func jsonResponse(status int, v any) Response {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"` + MsgInternal + `"}`)
	}
	return Response{
		StatusCode: status,
		Headers:    map[string]string{httputils.HeaderContentType: httputils.MIMEApplicationJSON},
		Body:       body,
	}
}

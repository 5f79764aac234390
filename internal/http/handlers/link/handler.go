package link

import (
	"context"
	"io"
	"net/http"

	"shortener/internal/http/gateway"
	"shortener/internal/http/httputils"

	"github.com/gorilla/mux"
)

// MaxBodyBytes caps a create request body; a URL is at most 2048 chars.
const MaxBodyBytes = 16 << 10

type Gateway interface {
	Handle(ctx context.Context, req gateway.Request) gateway.Response
}

// HandlerLink serves "/" and "/{short_code}" for every method and leaves the
// routing decision to the gateway.
func HandlerLink(gw Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := gateway.Request{
			Method:    r.Method,
			ShortCode: mux.Vars(r)["short_code"],
			Host:      r.Host,
		}

		if r.Method == http.MethodPost {
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
			if err != nil {
				httputils.WriteJSONError(w, http.StatusBadRequest, gateway.MsgInvalidURL)
				return
			}
			req.Body = body
		}

		resp := gw.Handle(r.Context(), req)
		httputils.WriteRaw(w, resp.StatusCode, resp.Headers, resp.Body)
	}
}

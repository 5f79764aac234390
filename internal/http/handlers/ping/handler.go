package ping

import (
	"context"
	"net/http"

	"shortener/internal/http/httputils"

	"github.com/rs/zerolog"
)

type Service interface {
	PingStorage(ctx context.Context) error
}

func HandlerPing(svc Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.PingStorage(r.Context()); err != nil {
			log.Error().Err(err).Msg("storage ping failed")
			httputils.WriteJSONError(w, http.StatusServiceUnavailable, "storage unavailable")
			return
		}
		httputils.WriteJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

package link

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shortener/internal/domain/models"
	"shortener/internal/generator"
	"shortener/internal/http/gateway"
	"shortener/internal/repository/inmemory"
	"shortener/internal/services/url_shortener"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingGateway remembers the last request and answers with a fixed response.
type recordingGateway struct {
	got  gateway.Request
	resp gateway.Response
}

func (g *recordingGateway) Handle(_ context.Context, req gateway.Request) gateway.Response {
	g.got = req
	return g.resp
}

func newRouter(gw Gateway) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", HandlerLink(gw))
	r.HandleFunc("/{short_code}", HandlerLink(gw))
	return r
}

func TestHandlerLink_TranslatesRequest(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		target  string
		body    string
		wantReq gateway.Request
	}{
		{
			name:    "post to root",
			method:  http.MethodPost,
			target:  "http://sho.rt/",
			body:    `{"url":"https://example.org"}`,
			wantReq: gateway.Request{Method: http.MethodPost, Host: "sho.rt", Body: []byte(`{"url":"https://example.org"}`)},
		},
		{
			name:    "get with code",
			method:  http.MethodGet,
			target:  "http://sho.rt:8080/Ab3dE6",
			wantReq: gateway.Request{Method: http.MethodGet, Host: "sho.rt:8080", ShortCode: "Ab3dE6"},
		},
		{
			name:    "get root",
			method:  http.MethodGet,
			target:  "http://sho.rt/",
			wantReq: gateway.Request{Method: http.MethodGet, Host: "sho.rt"},
		},
		{
			name:    "delete body is not read",
			method:  http.MethodDelete,
			target:  "http://sho.rt/Ab3dE6",
			body:    "ignored",
			wantReq: gateway.Request{Method: http.MethodDelete, Host: "sho.rt", ShortCode: "Ab3dE6"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &recordingGateway{resp: gateway.Response{StatusCode: http.StatusTeapot}}
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			newRouter(gw).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusTeapot, rec.Code)
			assert.Equal(t, tt.wantReq, gw.got)
		})
	}
}

func TestHandlerLink_WritesResponse(t *testing.T) {
	gw := &recordingGateway{resp: gateway.Response{
		StatusCode: http.StatusMovedPermanently,
		Headers:    map[string]string{"Location": "https://example.org/page"},
	}}
	rec := httptest.NewRecorder()

	newRouter(gw).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/abc", nil))

	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "https://example.org/page", rec.Header().Get("Location"))
	assert.Empty(t, rec.Body.Bytes())
}

func TestHandlerLink_BodyTooLarge(t *testing.T) {
	gw := &recordingGateway{}
	body := bytes.Repeat([]byte("a"), MaxBodyBytes+1)
	rec := httptest.NewRecorder()

	newRouter(gw).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid URL"}`, rec.Body.String())
	assert.Empty(t, gw.got.Method)
}

func TestHandlerLink_EndToEnd(t *testing.T) {
	gen, err := generator.New(models.DefaultCodeLength)
	require.NoError(t, err)
	svc := url_shortener.NewServiceURLShortener(inmemory.NewStorage(), gen, url_shortener.Options{}, zerolog.Nop())
	router := newRouter(gateway.New(svc, zerolog.Nop(), false))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "http://sho.rt/", strings.NewReader(`{"url":"https://example.org/page"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var out struct {
		ShortURL string `json:"short_url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.True(t, strings.HasPrefix(out.ShortURL, "https://sho.rt/"))
	code := strings.TrimPrefix(out.ShortURL, "https://sho.rt/")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://sho.rt/"+code, nil))
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "https://example.org/page", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://sho.rt/unknown123", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "http://sho.rt/"+code, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

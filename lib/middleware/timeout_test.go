package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func TestTimeoutExemptsRoutes(t *testing.T) {
	deadlines := map[string]bool{}
	record := func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.Context().Deadline()
		deadlines[r.Method+" "+r.URL.Path] = ok
		w.WriteHeader(http.StatusNoContent)
	}

	r := chi.NewRouter()
	r.Use(Timeout(time.Minute, Route{Method: http.MethodPost, Path: "/instances"}))
	r.Get("/instances", record)
	r.Post("/instances", record)
	r.Post("/instances/{name}/start", record)

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/instances", nil),
		httptest.NewRequest(http.MethodPost, "/instances", nil),
		httptest.NewRequest(http.MethodPost, "/instances/web/start", nil),
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	assert.Equal(t, map[string]bool{
		"GET /instances":            true,
		"POST /instances":           false,
		"POST /instances/web/start": true,
	}, deadlines)
}

func TestTimeoutRespondsWhenDeadlinePasses(t *testing.T) {
	h := Timeout(10 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images", nil))
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

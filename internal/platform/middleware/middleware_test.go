package middleware_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acadreg/internal/platform/logger"
	"acadreg/internal/platform/metrics"
	"acadreg/internal/platform/middleware"
	id "acadreg/pkg/domain"
	"acadreg/pkg/testutil"
)

type staticValidator map[string]id.Principal

func (v staticValidator) ValidateToken(token string) (id.Principal, error) {
	if p, ok := v[token]; ok {
		return p, nil
	}
	return id.NilPrincipal, errors.New("unknown token")
}

func TestRequireAuth(t *testing.T) {
	validator := staticValidator{"good-token": "alpha-university"}

	var seen id.Principal
	handler := middleware.RequireAuth(validator, logger.New())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = middleware.GetPrincipal(r.Context())
			w.WriteHeader(http.StatusOK)
		}),
	)

	testutil.Given(t, "a request with a valid bearer token", func(t *testing.T) {
		req := testutil.WithBearer(testutil.NewRequest(t, http.MethodGet, "/"), "good-token")
		rr := testutil.DoRequest(handler, req)

		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Equal(t, id.Principal("alpha-university"), seen)
	})

	testutil.Given(t, "a request without an Authorization header", func(t *testing.T) {
		rr := testutil.DoRequest(handler, testutil.NewRequest(t, http.MethodGet, "/"))
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	testutil.Given(t, "a request with an unknown token", func(t *testing.T) {
		req := testutil.WithBearer(testutil.NewRequest(t, http.MethodGet, "/"), "bogus")
		rr := testutil.DoRequest(handler, req)
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	testutil.Given(t, "a non-bearer Authorization scheme", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/")
		req.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
		rr := testutil.DoRequest(handler, req)
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})
}

func TestGetPrincipal(t *testing.T) {
	t.Run("absent principal yields nil", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/")
		assert.Equal(t, id.NilPrincipal, middleware.GetPrincipal(req.Context()))
	})

	t.Run("injected principal round-trips", func(t *testing.T) {
		req := testutil.WithPrincipal(testutil.NewRequest(t, http.MethodGet, "/"), "ministry")
		assert.Equal(t, id.Principal("ministry"), middleware.GetPrincipal(req.Context()))
	})
}

func TestRequestID(t *testing.T) {
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("assigns an id when absent", func(t *testing.T) {
		rr := testutil.DoRequest(handler, testutil.NewRequest(t, http.MethodGet, "/"))
		assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	})

	t.Run("propagates an incoming id", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/")
		req.Header.Set("X-Request-ID", "req-42")
		rr := testutil.DoRequest(handler, req)
		assert.Equal(t, "req-42", rr.Header().Get("X-Request-ID"))
	})
}

func TestRecovery(t *testing.T) {
	handler := middleware.Recovery(logger.New())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}),
	)

	rr := testutil.DoRequest(handler, testutil.NewRequest(t, http.MethodGet, "/"))
	testutil.AssertStatus(t, rr, http.StatusInternalServerError)
	testutil.AssertErrorCode(t, rr, "internal")
}

func TestLatency(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	router := chi.NewRouter()
	router.Use(middleware.Latency(m))
	router.Get("/credentials/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/credentials/abc"))
	testutil.AssertStatus(t, rr, http.StatusOK)

	// One observation recorded under the route pattern, not the raw path.
	count := testutil.CollectHistogramCount(t, m.HTTPDuration, "/credentials/{id}", "200")
	require.Equal(t, uint64(1), count)
}

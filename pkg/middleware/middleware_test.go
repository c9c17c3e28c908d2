package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vfg2006/ads-metrics-api/internal/domain"
	"github.com/vfg2006/ads-metrics-api/internal/usecases/authenticating/mocks"
	"github.com/vfg2006/ads-metrics-api/pkg/log"
	"github.com/vfg2006/ads-metrics-api/pkg/metrics"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestLoggingMiddleware_PropagatesRequestID(t *testing.T) {
	log.SetupTestLogger()

	var seen string
	handler := LoggingMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = log.GetCorrelationID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("reaproveita o header do cliente", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/google-ads/metrics", nil)
		req.Header.Set(log.RequestIDHeader, "req-42")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Equal(t, "req-42", seen)
		assert.Equal(t, "req-42", rec.Header().Get(log.RequestIDHeader))
	})

	t.Run("gera um ID quando ausente", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get(log.RequestIDHeader))
	})
}

func TestLoggingMiddleware_RejectsInvalidRequestID(t *testing.T) {
	log.SetupTestLogger()

	var seen string
	handler := LoggingMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = log.GetCorrelationID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name      string
		header    string
		wantReuse bool
	}{
		{name: "token simples é reaproveitado", header: "req-42", wantReuse: true},
		{name: "token com ponto e underscore", header: "abc_1.2-x", wantReuse: true},
		{name: "limite exato de tamanho", header: strings.Repeat("a", 64), wantReuse: true},
		{name: "header longo demais", header: strings.Repeat("a", 65)},
		{name: "header com espaços", header: "req 42"},
		{name: "header com quebra de linha de log", header: "x\" level=error msg=forjado"},
		{name: "header com caracteres não ASCII", header: "requisição"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
			req.Header.Set(log.RequestIDHeader, tt.header)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, seen, rec.Header().Get(log.RequestIDHeader))
			if tt.wantReuse {
				assert.Equal(t, tt.header, seen)
				return
			}
			assert.NotEqual(t, tt.header, seen)
			_, err := uuid.Parse(seen)
			assert.NoError(t, err)
		})
	}
}

func TestLoggingMiddleware_LabelsUnmatchedRoutes(t *testing.T) {
	log.SetupTestLogger()

	handler := LoggingMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	for _, path := range []string{"/a", "/b/c", "/d?x=1"} {
		req := httptest.NewRequest(http.MethodDelete, path, nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	count := testutil.CollectAndCount(metrics.ResponseTime)
	req := httptest.NewRequest(http.MethodDelete, "/mais-um", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, count, testutil.CollectAndCount(metrics.ResponseTime))
}

func TestLogPanicMiddleware(t *testing.T) {
	log.SetupTestLogger()

	handler := LogPanicMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"internal server error","code":"SRV_001"}`, rec.Body.String())
}

func TestCors(t *testing.T) {
	handler := Cors([]string{"http://localhost:3000"})(okHandler())

	t.Run("origem permitida", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/google-ads/metrics", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("origem desconhecida", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/google-ads/metrics", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestTracingMiddleware_PassesThrough(t *testing.T) {
	handler := TracingMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		header         string
		setupMocks     func(auth *mocks.MockAuthenticator)
		expectedStatus int
	}{
		{
			name: "autenticação desabilitada",
			path: "/api/google-ads/metrics",
			setupMocks: func(auth *mocks.MockAuthenticator) {
				auth.EXPECT().Enabled().Return(false)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "rota pública",
			path: "/healthcheck",
			setupMocks: func(auth *mocks.MockAuthenticator) {
				auth.EXPECT().Enabled().Return(true)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "sem header",
			path: "/api/google-ads/metrics",
			setupMocks: func(auth *mocks.MockAuthenticator) {
				auth.EXPECT().Enabled().Return(true)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "sem prefixo Bearer",
			path:   "/api/google-ads/metrics",
			header: "Token abc",
			setupMocks: func(auth *mocks.MockAuthenticator) {
				auth.EXPECT().Enabled().Return(true)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "token inválido",
			path:   "/api/google-ads/metrics",
			header: "Bearer abc",
			setupMocks: func(auth *mocks.MockAuthenticator) {
				auth.EXPECT().Enabled().Return(true)
				auth.EXPECT().ValidateToken("abc").Return(nil, errors.New("invalid token"))
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "token válido",
			path:   "/api/google-ads/metrics",
			header: "Bearer abc",
			setupMocks: func(auth *mocks.MockAuthenticator) {
				auth.EXPECT().Enabled().Return(true)
				auth.EXPECT().ValidateToken("abc").Return(&domain.Claims{Email: "a@b.c"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			auth := mocks.NewMockAuthenticator(ctrl)
			tt.setupMocks(auth)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			AuthMiddleware(auth)(okHandler()).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestAuthMiddleware_StoresClaims(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	auth := mocks.NewMockAuthenticator(ctrl)
	auth.EXPECT().Enabled().Return(true)
	auth.EXPECT().ValidateToken("abc").Return(&domain.Claims{Email: "a@b.c", Role: domain.RoleAdmin}, nil)

	var claims *domain.Claims
	handler := AuthMiddleware(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ = ClaimsFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/snapshots", nil)
	req.Header.Set("Authorization", "Bearer abc")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, claims)
	assert.Equal(t, "a@b.c", claims.Email)
}

func TestAdminOnly(t *testing.T) {
	withClaims := func(claims *domain.Claims) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/v1/cron/snapshot/run", nil)
		if claims == nil {
			return req
		}
		return req.WithContext(contextWithClaims(req, claims))
	}

	tests := []struct {
		name           string
		enabled        bool
		request        *http.Request
		expectedStatus int
	}{
		{name: "autenticação desabilitada", enabled: false, request: withClaims(nil), expectedStatus: http.StatusOK},
		{name: "sem claims", enabled: true, request: withClaims(nil), expectedStatus: http.StatusUnauthorized},
		{name: "não administrador", enabled: true, request: withClaims(&domain.Claims{Role: "viewer"}), expectedStatus: http.StatusForbidden},
		{name: "administrador", enabled: true, request: withClaims(&domain.Claims{Role: domain.RoleAdmin}), expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			auth := mocks.NewMockAuthenticator(ctrl)
			auth.EXPECT().Enabled().Return(tt.enabled)

			rec := httptest.NewRecorder()
			AdminOnly(auth)(okHandler()).ServeHTTP(rec, tt.request)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func contextWithClaims(r *http.Request, claims *domain.Claims) context.Context {
	return context.WithValue(r.Context(), ContextKeyUser, claims)
}

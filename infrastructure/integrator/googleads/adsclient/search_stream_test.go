package adsclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adsdomain "github.com/vfg2006/ads-metrics-api/infrastructure/integrator/googleads/domain"
	"github.com/vfg2006/ads-metrics-api/internal/config"
)

type fakeGoogleAds struct {
	mux         *http.ServeMux
	server      *httptest.Server
	tokenCalls  atomic.Int32
	searchCalls atomic.Int32
}

func newFakeGoogleAds(t *testing.T, search http.HandlerFunc) (*fakeGoogleAds, config.GoogleAds) {
	t.Helper()

	fake := &fakeGoogleAds{mux: http.NewServeMux()}
	fake.mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		fake.tokenCalls.Add(1)
		okTokenHandler("access-token", 3600)(w, r)
	})
	fake.mux.HandleFunc("/v17/customers/", func(w http.ResponseWriter, r *http.Request) {
		fake.searchCalls.Add(1)
		search(w, r)
	})

	fake.server = httptest.NewServer(fake.mux)
	t.Cleanup(fake.server.Close)

	cfg := testGoogleAdsConfig(fake.server.URL + "/token")
	cfg.APIURL = fake.server.URL

	return fake, cfg
}

func newTestClient(t *testing.T, cfg config.GoogleAds) *AdsClient {
	t.Helper()

	client, err := NewClient(cfg, NewTokenManager(cfg))
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	cfg := testGoogleAdsConfig("http://localhost/token")
	cfg.DeveloperToken = ""

	client, err := NewClient(cfg, NewTokenManager(cfg))
	assert.Nil(t, client)

	var cfgErr *config.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []string{"GOOGLE_ADS_DEVELOPER_TOKEN"}, cfgErr.Missing)
}

func TestSearchStream_Request(t *testing.T) {
	var (
		path    string
		headers http.Header
		query   string
	)

	_, cfg := newFakeGoogleAds(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		headers = r.Header.Clone()

		body, _ := io.ReadAll(r.Body)
		var payload map[string]string
		_ = json.Unmarshal(body, &payload)
		query = payload["query"]

		fmt.Fprint(w, `[{"results":[{"customer":{"id":"1234567890","descriptiveName":"Loja"},"metrics":{"costMicros":"1500000","conversions":3,"impressions":"100","clicks":"7"}}]}]`)
	})
	cfg.LoginCustomerID = "999-888-7777"

	client := newTestClient(t, cfg)

	response, err := client.SearchStream(context.Background(), "123-456-7890", "SELECT customer.id FROM customer")
	require.NoError(t, err)

	assert.Equal(t, "/v17/customers/1234567890/googleAds:searchStream", path)
	assert.Equal(t, "application/json", headers.Get("Content-Type"))
	assert.Equal(t, "dev-token", headers.Get("developer-token"))
	assert.Equal(t, "Bearer access-token", headers.Get("Authorization"))
	assert.Equal(t, "9998887777", headers.Get("login-customer-id"))
	assert.Equal(t, "SELECT customer.id FROM customer", query)

	rows := response.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1500000), rows[0].Metrics.CostMicros.Int64())
}

func TestSearchStream_WithoutLoginCustomerID(t *testing.T) {
	var hasHeader bool
	_, cfg := newFakeGoogleAds(t, func(w http.ResponseWriter, r *http.Request) {
		_, hasHeader = r.Header["Login-Customer-Id"]
		fmt.Fprint(w, `[]`)
	})

	client := newTestClient(t, cfg)

	_, err := client.SearchStream(context.Background(), "1234567890", "SELECT customer.id FROM customer")
	require.NoError(t, err)
	assert.False(t, hasHeader)
}

func TestSearchStream_HTTPErrors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		contains   []string
	}{
		{
			name:       "conta não encontrada",
			statusCode: http.StatusNotFound,
			body:       `{"error":{"code":404}}`,
			contains:   []string{"customer 222-333-4444", "404", "Possible causes", "GOOGLE_ADS_LOGIN_CUSTOMER_ID"},
		},
		{
			name:       "token recusado",
			statusCode: http.StatusUnauthorized,
			contains:   []string{"401", "access token may be invalid or expired"},
		},
		{
			name:       "sem permissão",
			statusCode: http.StatusForbidden,
			contains:   []string{"403", "developer token is approved"},
		},
		{
			name:       "erro genérico",
			statusCode: http.StatusBadRequest,
			body:       `{"error":{"message":"Invalid GAQL"}}`,
			contains:   []string{"400", "Invalid GAQL"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cfg := newFakeGoogleAds(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				fmt.Fprint(w, tt.body)
			})
			client := newTestClient(t, cfg)

			response, err := client.SearchStream(context.Background(), "222-333-4444", "SELECT customer.id FROM customer")
			assert.Nil(t, response)

			var queryErr *adsdomain.QueryError
			require.True(t, errors.As(err, &queryErr))
			assert.Equal(t, tt.statusCode, queryErr.StatusCode)
			assert.Equal(t, "222-333-4444", queryErr.CustomerID)
			for _, part := range tt.contains {
				assert.Contains(t, err.Error(), part)
			}
		})
	}
}

func TestSearchStream_UnauthorizedInvalidatesToken(t *testing.T) {
	fake, cfg := newFakeGoogleAds(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	client := newTestClient(t, cfg)

	_, err := client.SearchStream(context.Background(), "1234567890", "SELECT customer.id FROM customer")
	require.Error(t, err)
	_, err = client.SearchStream(context.Background(), "1234567890", "SELECT customer.id FROM customer")
	require.Error(t, err)

	assert.Equal(t, int32(2), fake.tokenCalls.Load())
	assert.Equal(t, int32(2), fake.searchCalls.Load())
}

func TestSearchStream_StaleUnauthorizedKeepsRenewedToken(t *testing.T) {
	var client *AdsClient
	_, cfg := newFakeGoogleAds(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))

		// outra requisição renovou o token enquanto esta estava em voo
		client.TokenManager.mu.Lock()
		client.TokenManager.token = &cachedToken{accessToken: "renewed-token", expiresAt: time.Now().Add(time.Hour)}
		client.TokenManager.mu.Unlock()

		w.WriteHeader(http.StatusUnauthorized)
	})
	client = newTestClient(t, cfg)

	_, err := client.SearchStream(context.Background(), "1234567890", "SELECT customer.id FROM customer")
	require.Error(t, err)

	token, err := client.GetValidToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "renewed-token", token)
}

func TestSearchStream_TokenFailureIsWrapped(t *testing.T) {
	fake := http.NewServeMux()
	fake.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_grant"}`)
	})
	var searchCalls atomic.Int32
	fake.HandleFunc("/v17/customers/", func(w http.ResponseWriter, r *http.Request) {
		searchCalls.Add(1)
	})
	server := httptest.NewServer(fake)
	defer server.Close()

	cfg := testGoogleAdsConfig(server.URL + "/token")
	cfg.APIURL = server.URL
	client := newTestClient(t, cfg)

	_, err := client.SearchStream(context.Background(), "111", "SELECT customer.id FROM customer")
	require.Error(t, err)

	var authErr *adsdomain.AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Contains(t, err.Error(), "google ads query for customer 111")
	assert.Contains(t, err.Error(), "GOOGLE_ADS_REFRESH_TOKEN")
	assert.Equal(t, int32(0), searchCalls.Load())
}

func TestSearchStream_MalformedBody(t *testing.T) {
	_, cfg := newFakeGoogleAds(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"results":[{"metrics":{"costMicros":"lots"}}]}]`)
	})
	client := newTestClient(t, cfg)

	_, err := client.SearchStream(context.Background(), "1234567890", "SELECT customer.id FROM customer")

	var parseErr *adsdomain.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "1234567890", parseErr.CustomerID)
}

func TestSearchStream_TransportError(t *testing.T) {
	_, cfg := newFakeGoogleAds(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	cfg.APIURL = "http://127.0.0.1:1"
	client := newTestClient(t, cfg)

	_, err := client.SearchStream(context.Background(), "1234567890", "SELECT customer.id FROM customer")

	var queryErr *adsdomain.QueryError
	require.True(t, errors.As(err, &queryErr))
	assert.Equal(t, 0, queryErr.StatusCode)
	assert.Contains(t, err.Error(), "Google Ads API error for customer 1234567890")
}

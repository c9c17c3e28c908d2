package adsclient

//go:generate mockgen -source=client.go -destination=../mocks/client_mock.go -package=mocks

import (
	"context"
	"net/http"
	"strings"

	adsdomain "github.com/vfg2006/ads-metrics-api/infrastructure/integrator/googleads/domain"
	"github.com/vfg2006/ads-metrics-api/internal/config"
)

type Client interface {
	SearchStream(ctx context.Context, customerID, query string) (*adsdomain.SearchStreamResponse, error)
	GetValidToken(ctx context.Context) (string, error)
}

type AdsClient struct {
	Cfg          config.GoogleAds
	TokenManager *TokenManager
	httpClient   *http.Client
}

type ClientOption func(*AdsClient)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *AdsClient) {
		c.httpClient = httpClient
	}
}

// NewClient valida as credenciais e cria o cliente da API do Google Ads
func NewClient(cfg config.GoogleAds, tokenManager *TokenManager, opts ...ClientOption) (*AdsClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := &AdsClient{
		Cfg:          cfg,
		TokenManager: tokenManager,
		httpClient:   &http.Client{Timeout: cfg.HTTPTimeout},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// GetValidToken devolve um access token válido
func (c *AdsClient) GetValidToken(ctx context.Context) (string, error) {
	return c.TokenManager.GetValidToken(ctx)
}

func (c *AdsClient) searchStreamURL(customerID string) string {
	return strings.Join([]string{
		c.Cfg.APIURL,
		c.Cfg.APIVersion,
		"customers",
		customerID + "/googleAds:searchStream",
	}, "/")
}

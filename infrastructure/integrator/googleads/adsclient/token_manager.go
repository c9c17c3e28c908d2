package adsclient

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	adsdomain "github.com/vfg2006/ads-metrics-api/infrastructure/integrator/googleads/domain"
	"github.com/vfg2006/ads-metrics-api/internal/config"
	"github.com/vfg2006/ads-metrics-api/pkg/metrics"
)

// tokenExpiryMargin antecipa a renovação para não usar um token prestes a expirar
const tokenExpiryMargin = 5 * time.Minute

const operationTokenRefresh = "oauth_token"

type cachedToken struct {
	accessToken string
	expiresAt   time.Time
}

func (t *cachedToken) validAt(now time.Time) bool {
	return t != nil && t.accessToken != "" && now.Add(tokenExpiryMargin).Before(t.expiresAt)
}

// TokenManager mantém o access token OAuth do Google Ads em memória
type TokenManager struct {
	cfg        config.GoogleAds
	httpClient *http.Client
	now        func() time.Time

	mu    sync.RWMutex
	token *cachedToken

	refreshGroup singleflight.Group
}

type TokenManagerOption func(*TokenManager)

// WithClock substitui o relógio usado para validar a expiração
func WithClock(now func() time.Time) TokenManagerOption {
	return func(tm *TokenManager) {
		tm.now = now
	}
}

func WithTokenHTTPClient(httpClient *http.Client) TokenManagerOption {
	return func(tm *TokenManager) {
		tm.httpClient = httpClient
	}
}

// NewTokenManager cria uma nova instância do gerenciador de tokens
func NewTokenManager(cfg config.GoogleAds, opts ...TokenManagerOption) *TokenManager {
	tm := &TokenManager{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(tm)
	}

	return tm
}

// GetValidToken devolve o token em cache ou executa o refresh.
// Chamadas concorrentes compartilham uma única renovação.
func (tm *TokenManager) GetValidToken(ctx context.Context) (string, error) {
	if token, ok := tm.cachedAccessToken(); ok {
		return token, nil
	}

	ch := tm.refreshGroup.DoChan(tm.refreshKey(), func() (interface{}, error) {
		if token, ok := tm.cachedAccessToken(); ok {
			return token, nil
		}
		return tm.refresh(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return "", pkgerrors.Wrap(ctx.Err(), "waiting for OAuth token refresh")
	case result := <-ch:
		if result.Err != nil {
			return "", result.Err
		}
		return result.Val.(string), nil
	}
}

// InvalidateIfCurrent descarta o token em cache somente se ele ainda for o
// accessToken recusado; um token já renovado por outra requisição é mantido
func (tm *TokenManager) InvalidateIfCurrent(accessToken string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.token != nil && tm.token.accessToken == accessToken {
		tm.token = nil
	}
}

func (tm *TokenManager) cachedAccessToken() (string, bool) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	if tm.token.validAt(tm.now()) {
		return tm.token.accessToken, true
	}
	return "", false
}

func (tm *TokenManager) refreshKey() string {
	return tm.cfg.ClientID + ":" + tm.cfg.RefreshToken
}

func (tm *TokenManager) refresh(ctx context.Context) (string, error) {
	logrus.Info("Renovando access token do Google Ads")

	requestedAt := tm.now()
	startedAt := time.Now()

	tokenResp, err := requestAccessToken(ctx, tm.httpClient, tm.cfg)
	metrics.ObserveUpstream(operationTokenRefresh, refreshStatusCode(err), startedAt)
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues("error").Inc()

		var authErr *adsdomain.AuthError
		if errors.As(err, &authErr) && authErr.RequiresReauthorization() {
			logrus.Error("O refresh token expirou ou foi revogado. É necessário reautorizar a aplicação")
		} else {
			logrus.WithError(err).Error("Erro ao renovar access token do Google Ads")
		}
		return "", err
	}

	token := &cachedToken{
		accessToken: tokenResp.AccessToken,
		expiresAt:   tokenResp.ExpiresAt(requestedAt),
	}

	tm.mu.Lock()
	tm.token = token
	tm.mu.Unlock()

	metrics.TokenRefreshes.WithLabelValues("success").Inc()
	logrus.WithFields(logrus.Fields{
		"expires_at": token.expiresAt.Format(time.RFC3339),
		"expires_in": strconv.FormatInt(tokenResp.ExpiresIn, 10) + "s",
	}).Info("Access token do Google Ads renovado com sucesso")

	return token.accessToken, nil
}

func refreshStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var authErr *adsdomain.AuthError
	if errors.As(err, &authErr) {
		return authErr.StatusCode
	}
	return 0
}

package adsclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	adsdomain "github.com/vfg2006/ads-metrics-api/infrastructure/integrator/googleads/domain"
	"github.com/vfg2006/ads-metrics-api/internal/config"
)

// TokenResponse representa a resposta do endpoint OAuth ao trocar o refresh token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
}

// ExpiresAt calcula o instante absoluto de expiração a partir de now
func (t *TokenResponse) ExpiresAt(now time.Time) time.Time {
	return now.Add(time.Duration(t.ExpiresIn) * time.Second)
}

// requestAccessToken executa o grant refresh_token contra o endpoint de token
func requestAccessToken(ctx context.Context, httpClient *http.Client, cfg config.GoogleAds) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("refresh_token", cfg.RefreshToken)
	form.Set("client_id", cfg.ClientID)
	form.Set("client_secret", cfg.ClientSecret)
	form.Set("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &adsdomain.AuthError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &adsdomain.AuthError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &adsdomain.AuthError{Err: fmt.Errorf("read token response: %w", err)}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &adsdomain.AuthError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, &adsdomain.AuthError{Err: fmt.Errorf("decode token response: %w", err)}
	}

	if tokenResp.AccessToken == "" {
		return nil, &adsdomain.AuthError{Err: errors.New("token endpoint returned an empty access_token")}
	}

	return &tokenResp, nil
}

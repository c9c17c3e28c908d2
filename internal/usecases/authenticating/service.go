package authenticating

//go:generate mockgen -source=service.go -destination=mocks/service_mock.go -package=mocks

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vfg2006/ads-metrics-api/internal/config"
	"github.com/vfg2006/ads-metrics-api/internal/domain"
	"github.com/vfg2006/ads-metrics-api/pkg/apiErrors"
)

// Authenticator valida os tokens emitidos para o dashboard
type Authenticator interface {
	Enabled() bool
	ValidateToken(tokenString string) (*domain.Claims, error)
}

type Service struct {
	secret []byte
}

func NewService(cfg *config.Config) *Service {
	return &Service{
		secret: []byte(cfg.Auth.Secret),
	}
}

// Enabled indica se há um segredo configurado para validar tokens
func (s *Service) Enabled() bool {
	return len(s.secret) > 0
}

func (s *Service) ValidateToken(tokenString string) (*domain.Claims, error) {
	if !s.Enabled() {
		return nil, ErrAuthDisabled
	}

	token, err := jwt.ParseWithClaims(tokenString, &domain.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, NewAuthError(ErrExpiredToken, apiErrors.ErrInvalidToken, err.Error())
		}
		return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, err.Error())
	}

	claims, ok := token.Claims.(*domain.Claims)
	if !ok || !token.Valid {
		return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, "")
	}

	return claims, nil
}

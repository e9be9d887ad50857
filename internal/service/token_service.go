package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kmorrow/todo-list-api/internal/config"
	"github.com/kmorrow/todo-list-api/internal/domain"
)

// TokenService issues and verifies the signed access/refresh token pair.
// Refresh revocation is not handled here; it lives in the refresh-token set
// on the user record. Access tokens are never individually revoked, they
// simply expire.
type TokenService struct {
	cfg *config.Config
}

func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{cfg: cfg}
}

func (s *TokenService) IssueTokenPair(userID uuid.UUID) (accessToken, refreshToken string, err error) {
	now := time.Now()

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID.String(),
		"iat": now.Unix(),
		"exp": now.Add(s.cfg.AccessTokenTTL).Unix(),
	})
	accessToken, err = access.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", "", err
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID.String(),
		"type": "refresh",
		"iat":  now.Unix(),
		"exp":  now.Add(s.cfg.RefreshTokenTTL).Unix(),
	})
	refreshToken, err = refresh.SignedString(s.refreshSecret())
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (s *TokenService) VerifyAccessToken(tokenString string) (uuid.UUID, error) {
	claims, err := s.parse(tokenString, []byte(s.cfg.JWTSecret))
	if err != nil {
		return uuid.Nil, err
	}
	return subjectID(claims)
}

func (s *TokenService) VerifyRefreshToken(tokenString string) (uuid.UUID, error) {
	claims, err := s.parse(tokenString, s.refreshSecret())
	if err != nil {
		return uuid.Nil, err
	}

	if tokenType, _ := claims["type"].(string); tokenType != "refresh" {
		return uuid.Nil, domain.ErrWrongTokenType
	}

	return subjectID(claims)
}

// refreshSecret falls back to the access-token secret when no distinct
// refresh secret is configured.
func (s *TokenService) refreshSecret() []byte {
	if s.cfg.JWTRefreshSecret != "" {
		return []byte(s.cfg.JWTRefreshSecret)
	}
	return []byte(s.cfg.JWTSecret)
}

func (s *TokenService) parse(tokenString string, secret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	return claims, nil
}

func subjectID(claims jwt.MapClaims) (uuid.UUID, error) {
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, domain.ErrTokenInvalid
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, domain.ErrTokenInvalid
	}
	return userID, nil
}

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrInvalidToken covers malformed, badly signed and expired tokens alike so
// callers cannot distinguish why a credential was rejected.
var ErrInvalidToken = errors.New("invalid or expired token")

type TokenClaims struct {
	Subject uuid.UUID
	Type    string
}

// TokenService issues and verifies the access/refresh token pair. Tokens
// carry the subject user id, an expiry and a type tag; the type must be
// checked by the caller after Decode.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *TokenService) IssueAccessToken(subject uuid.UUID) (string, error) {
	return s.issue(subject, TokenTypeAccess, s.accessTTL)
}

func (s *TokenService) IssueRefreshToken(subject uuid.UUID) (string, error) {
	return s.issue(subject, TokenTypeRefresh, s.refreshTTL)
}

func (s *TokenService) issue(subject uuid.UUID, tokenType string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  subject.String(),
		"exp":  time.Now().Add(ttl).Unix(),
		"type": tokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *TokenService) Decode(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})

	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)

	if !ok {
		return nil, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)

	if !ok {
		return nil, ErrInvalidToken
	}

	subject, err := uuid.Parse(sub)

	if err != nil {
		return nil, ErrInvalidToken
	}

	tokenType, ok := claims["type"].(string)

	if !ok {
		return nil, ErrInvalidToken
	}

	return &TokenClaims{Subject: subject, Type: tokenType}, nil
}

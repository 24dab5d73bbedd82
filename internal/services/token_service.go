package services

import (
	"fmt"
	"time"

	"dukan/internal/config"
	"dukan/internal/models"

	"github.com/dgrijalva/jwt-go"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// TokenPair is what a completed login hands back to the client.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"-"`
}

// Claims are the fields read back out of a valid token.
type Claims struct {
	UserID string
	Role   models.Role
}

// TokenService signs and validates HS256 access and refresh tokens.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
	}
}

// AccessTTL is the lifetime of access tokens.
func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL is the lifetime of refresh tokens, and of the cookie carrying them.
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

// Issue signs a fresh access and refresh token for user.
func (s *TokenService) Issue(user *models.User) (*TokenPair, error) {
	access, err := s.sign(user, tokenTypeAccess, s.accessSecret, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(user, tokenTypeRefresh, s.refreshSecret, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// IssueAccess signs only a new access token.
func (s *TokenService) IssueAccess(user *models.User) (string, error) {
	return s.sign(user, tokenTypeAccess, s.accessSecret, s.accessTTL)
}

func (s *TokenService) ParseAccess(tokenString string) (*Claims, error) {
	return s.parse(tokenString, tokenTypeAccess, s.accessSecret)
}

func (s *TokenService) ParseRefresh(tokenString string) (*Claims, error) {
	return s.parse(tokenString, tokenTypeRefresh, s.refreshSecret)
}

func (s *TokenService) sign(user *models.User, typ string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   user.ID,
		"role": string(user.Role),
		"typ":  typ,
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s token: %w", typ, err)
	}
	return signed, nil
}

func (s *TokenService) parse(tokenString, typ string, secret []byte) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims["typ"] != typ {
		return nil, fmt.Errorf("invalid token: expected %s token", typ)
	}
	id, _ := claims["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("invalid token: missing subject")
	}
	role, _ := claims["role"].(string)
	return &Claims{UserID: id, Role: models.Role(role)}, nil
}

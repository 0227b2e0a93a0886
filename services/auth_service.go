// Package services, domain iş mantığını barındırır. Her service bir
// interface + unexported struct + constructor üçlüsüdür; registry ve
// ws.EventPublisher'a interface üzerinden bağlanır.
package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/akinalp/huddle/models"
)

// AuthService, WebSocket handshake'indeki opsiyonel token'ın doğrulamasını yapar.
//
// Bu sistemde login/register akışı YOKTUR — token'ı dış bir kimlik sistemi
// üretir. Token verilmeyen bağlantılar reddedilmez; kullanıcı id'leri
// connection id'ye düşer. GenerateAccessToken test ve tooling içindir.
type AuthService interface {
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
	GenerateAccessToken(userID, username string, expiry time.Duration) (string, error)
}

type authService struct {
	secret []byte
}

// NewAuthService, constructor. secret boş olmamalıdır — boş secret ile
// token doğrulama zaten config katmanında devre dışı bırakılır.
func NewAuthService(secret string) AuthService {
	return &authService{secret: []byte(secret)}
}

// accessClaims, token'ın JWT claim yapısı. Subject kullanıcı id'sidir.
type accessClaims struct {
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

func (s *authService) ValidateAccessToken(tokenString string) (*models.TokenClaims, error) {
	var claims accessClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		// Sadece HMAC kabul edilir — alg=none gibi downgrade'lere kapalı.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid access token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid access token: missing subject")
	}

	return &models.TokenClaims{
		UserID:   claims.Subject,
		Username: claims.Username,
	}, nil
}

func (s *authService) GenerateAccessToken(userID, username string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := accessClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

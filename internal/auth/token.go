package auth

import (
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/medikart/medikart-backend/internal/apperrors"
	"github.com/medikart/medikart-backend/internal/config"
	"github.com/medikart/medikart-backend/internal/models"
)

// Claims is the JWT payload carried in the Authorization header.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

// TokenManager signs and parses access tokens with HMAC-SHA256.
type TokenManager struct {
	secret []byte
	expiry time.Duration
}

func NewTokenManager(cfg config.JWTConfig) *TokenManager {
	return &TokenManager{
		secret: []byte(cfg.Secret),
		expiry: cfg.Expiry,
	}
}

// Generate issues a token for the user with the configured expiry.
func (m *TokenManager) Generate(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID.Hex(),
		Role:   string(user.Role),
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(m.expiry).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse validates the signature and expiry and returns the claims.
func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.NewUnauthorizedError("Invalid token")
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.NewUnauthorizedError("Invalid or expired token")
	}
	return claims, nil
}

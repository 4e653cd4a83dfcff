package identity

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/keshavpotewar/SkillSwap/internal/platform/middleware"
	"github.com/keshavpotewar/SkillSwap/pkg/domerr"
)

// Claims are the JWT claims the excluded auth layer puts in access tokens.
type Claims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService validates access tokens issued by the auth subsystem. Issuance
// stays out of this core; the service only verifies and extracts identity.
type JWTService struct {
	signingKey []byte
}

func NewJWTService(signingKey string) *JWTService {
	return &JWTService{signingKey: []byte(signingKey)}
}

var _ middleware.JWTValidator = (*JWTService)(nil)

func (s *JWTService) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domerr.New(domerr.CodeUnauthorized, "token has expired")
		}
		return nil, domerr.New(domerr.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, domerr.New(domerr.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return nil, domerr.New(domerr.CodeUnauthorized, "invalid token claims")
	}
	return &middleware.JWTClaims{
		UserID: claims.Subject,
		Name:   claims.Name,
		Role:   claims.Role,
	}, nil
}

package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshavpotewar/SkillSwap/pkg/domerr"
)

const testSigningKey = "test-signing-key"

var jwtService = NewJWTService(testSigningKey)

func mintToken(t *testing.T, key string, method jwt.SigningMethod, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func userClaims(userID, name, role string, expiresIn time.Duration) Claims {
	return Claims{
		Name: name,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func Test_ValidateToken_ValidToken(t *testing.T) {
	token := mintToken(t, testSigningKey, jwt.SigningMethodHS256,
		userClaims("user-123", "Alice", "user", time.Hour))

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, "user", claims.Role)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.Error(t, err)
	assert.True(t, domerr.Is(err, domerr.CodeUnauthorized))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	token := mintToken(t, testSigningKey, jwt.SigningMethodHS256,
		userClaims("user-123", "Alice", "user", -time.Hour))

	_, err := jwtService.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, domerr.Is(err, domerr.CodeUnauthorized))
	assert.Equal(t, "token has expired", domerr.MessageOf(err))
}

func Test_ValidateToken_WrongKey(t *testing.T) {
	token := mintToken(t, "some-other-key", jwt.SigningMethodHS256,
		userClaims("user-123", "Alice", "user", time.Hour))

	_, err := jwtService.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, domerr.Is(err, domerr.CodeUnauthorized))
}

func Test_ValidateToken_MissingSubject(t *testing.T) {
	token := mintToken(t, testSigningKey, jwt.SigningMethodHS256,
		userClaims("", "Alice", "user", time.Hour))

	_, err := jwtService.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, "invalid token claims", domerr.MessageOf(err))
}

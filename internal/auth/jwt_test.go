package auth

import (
	"testing"

	"github.com/SeakMengs/InstaPilot/internal/config"
	"github.com/SeakMengs/InstaPilot/internal/constant"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Perform token generation and verify the generated token to ensure VerifyJwtToken is correct
func TestJWT(t *testing.T) {
	jwtService := NewJwt(config.AuthConfig{JWT_SECRET: "test-secret"}, nil)

	refreshToken, accessToken, err := jwtService.GenerateRefreshAndAccessToken(JWTPayload{
		ID:    "id1234",
		Email: "test@gmail.com",
	})
	require.NoError(t, err)
	require.NotNil(t, refreshToken)
	require.NotNil(t, accessToken)

	refreshClaims, err := jwtService.VerifyJwtToken(*refreshToken)
	require.NoError(t, err)
	assert.Equal(t, constant.JWT_TYPE_REFRESH, refreshClaims.Type)
	assert.Equal(t, "id1234", refreshClaims.User.ID)

	accessClaims, err := jwtService.VerifyJwtToken(*accessToken)
	require.NoError(t, err)
	assert.Equal(t, constant.JWT_TYPE_ACCESS, accessClaims.Type)
	assert.Equal(t, "test@gmail.com", accessClaims.User.Email)
}

// A token signed with the right secret but missing timestamp claims must be
// rejected with an error, not crash the caller.
func TestVerifyJwtTokenMissingTimestamps(t *testing.T) {
	jwtService := NewJwt(config.AuthConfig{JWT_SECRET: "test-secret"}, nil)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user": map[string]interface{}{"id": "id1234"},
		"type": constant.JWT_TYPE_ACCESS,
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = jwtService.VerifyJwtToken(signed)
	assert.Error(t, err)
}

func TestVerifyJwtTokenWrongSecret(t *testing.T) {
	jwtService := NewJwt(config.AuthConfig{JWT_SECRET: "test-secret"}, nil)
	other := NewJwt(config.AuthConfig{JWT_SECRET: "other-secret"}, nil)

	refreshToken, _, err := jwtService.GenerateRefreshAndAccessToken(JWTPayload{ID: "id1234"})
	require.NoError(t, err)

	_, err = other.VerifyJwtToken(*refreshToken)
	assert.Error(t, err)
}

package authutils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"hr-timesheet-backend/config"
	"hr-timesheet-backend/models"
)

func TestPassword(t *testing.T) {
	t.Run(`hash and check`, func(t *testing.T) {
		hash, err := HashPassword("secret-password")
		require.Nil(t, err)
		require.NotEqual(t, "secret-password", hash)
		require.True(t, CheckPassword(hash, "secret-password"))
		require.False(t, CheckPassword(hash, "other-password"))
	})
	t.Run(`empty hash never matches`, func(t *testing.T) {
		require.False(t, CheckPassword("", ""))
	})
}

func TestGetToken(t *testing.T) {
	config.Conf = &config.Configuration{}
	config.Conf.Auth.JWTSecret = "test-secret"
	config.Conf.Auth.JWTExpireInSec = 3600

	tokenString, expiresAt, err := GetToken("user-1", "Иван", models.UserRoleSupervisor)
	require.Nil(t, err)
	require.False(t, expiresAt.IsZero())

	token, err := jwt.ParseWithClaims(tokenString, jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.Nil(t, err)
	claims := token.Claims.(jwt.MapClaims)
	require.Equal(t, "user-1", claims["sub"])
	require.Equal(t, "supervisor", claims["role"])
	require.Equal(t, "Иван", claims["name"])
}

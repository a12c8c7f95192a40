package authutils

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"hr-timesheet-backend/config"
	"hr-timesheet-backend/models"
)

func GetToken(userID, name string, role models.UserRole) (tokenString string, expiresAt time.Time, err error) {
	expiresAt = time.Now().Add(time.Second * time.Duration(config.Conf.Auth.JWTExpireInSec))
	claims := jwt.MapClaims{
		"name": name,
		"sub":  userID,
		"role": string(role),
		"exp":  expiresAt.Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err = token.SignedString([]byte(config.Conf.Auth.JWTSecret))
	return tokenString, expiresAt, err
}

func GetClaims(ctx *fiber.Ctx) jwt.MapClaims {
	token, ok := ctx.Locals("user").(*jwt.Token)
	if !ok {
		return jwt.MapClaims{}
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return jwt.MapClaims{}
	}
	return claims
}

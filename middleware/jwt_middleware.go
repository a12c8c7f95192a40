package middleware

import (
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
	"hr-timesheet-backend/config"
	usershandler "hr-timesheet-backend/lib/users"
	authutils "hr-timesheet-backend/lib/utils/auth-utils"
	"hr-timesheet-backend/models"
	apimodels "hr-timesheet-backend/models/api"
)

// AuthorizationRequired токен сессии ищется в заголовке Authorization, затем в cookie
func AuthorizationRequired() fiber.Handler {
	return jwtware.New(jwtware.Config{
		Claims: jwt.MapClaims{},
		SigningKey: jwtware.SigningKey{
			JWTAlg: "HS256",
			Key:    []byte(config.Conf.Auth.JWTSecret),
		},
		TokenLookup: "header:Authorization,cookie:" + config.Conf.Auth.CookieName,
		AuthScheme:  "Bearer",
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			return ctx.Status(fiber.StatusUnauthorized).JSON(apimodels.NewError("требуется авторизация"))
		},
		SuccessHandler: activeUserRequired,
	})
}

// activeUserRequired заблокированный пользователь теряет доступ сразу, а не по истечении токена
func activeUserRequired(ctx *fiber.Ctx) error {
	userID := GetUserID(ctx)
	active, err := usershandler.Instance.IsActive(userID)
	if err != nil {
		log.
			WithError(err).
			WithField("user_id", userID).
			Error("ошибка проверки активности пользователя")
		return ctx.Status(fiber.StatusInternalServerError).JSON(apimodels.NewError("ошибка проверки пользователя"))
	}
	if !active {
		return ctx.Status(fiber.StatusUnauthorized).JSON(apimodels.NewError("пользователь заблокирован"))
	}
	return ctx.Next()
}

func RoleRequired(roles ...models.UserRole) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		role := GetUserRole(ctx)
		for _, allowed := range roles {
			if role == allowed {
				return ctx.Next()
			}
		}
		return ctx.Status(fiber.StatusForbidden).JSON(apimodels.NewError("операция недоступна"))
	}
}

func GetUserID(ctx *fiber.Ctx) string {
	claims := authutils.GetClaims(ctx)
	if sub, ok := claims["sub"].(string); ok {
		return sub
	}
	return ""
}

func GetUserRole(ctx *fiber.Ctx) models.UserRole {
	claims := authutils.GetClaims(ctx)
	if role, ok := claims["role"].(string); ok && role != "" {
		return models.UserRole(role)
	}
	return ""
}

func GetUserName(ctx *fiber.Ctx) string {
	claims := authutils.GetClaims(ctx)
	if name, ok := claims["name"].(string); ok {
		return name
	}
	return ""
}

func GetActor(ctx *fiber.Ctx) models.Actor {
	return models.Actor{
		UserID: GetUserID(ctx),
		Role:   GetUserRole(ctx),
		Name:   GetUserName(ctx),
	}
}

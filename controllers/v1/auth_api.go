package apiv1

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"hr-timesheet-backend/config"
	"hr-timesheet-backend/controllers"
	usershandler "hr-timesheet-backend/lib/users"
	"hr-timesheet-backend/middleware"
	apimodels "hr-timesheet-backend/models/api"
	authapimodels "hr-timesheet-backend/models/api/auth"
)

type authApiController struct {
	controllers.BaseAPIController
}

func InitAuthApiRouters(app *fiber.App) {
	controller := authApiController{}
	app.Route("timesheet", func(router fiber.Router) {
		router.Post("login", controller.login)
		router.Post("logout", controller.logout)
		router.Post("register", controller.register)
		router.Get("me", middleware.AuthorizationRequired(), controller.me)
	})
}

// @Summary Вход в кабинет табелей
// @Tags Аутентификация пользователей
// @Description Вход по почте и паролю, токен также устанавливается в cookie
// @Param	body				body		authapimodels.LoginRequest	true	"request body"
// @Success 200 {object} apimodels.Response{data=authapimodels.JWTResponse}
// @Failure 400 {object} apimodels.Response
// @Failure 401 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/timesheet/login [post]
func (c *authApiController) login(ctx *fiber.Ctx) error {
	var payload authapimodels.LoginRequest
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := usershandler.Instance.Login(payload.Email, payload.Password)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка входа пользователя")
	}
	ctx.Cookie(sessionCookie(resp.Token, resp.ExpiresAt))
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Выход
// @Tags Аутентификация пользователей
// @Description Удаление cookie сессии
// @Success 200 {object} apimodels.Response
// @router /api/v1/timesheet/logout [post]
func (c *authApiController) logout(ctx *fiber.Ctx) error {
	ctx.Cookie(sessionCookie("", time.Unix(0, 0)))
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Регистрация подрядчика
// @Tags Аутентификация пользователей
// @Description Самостоятельная регистрация, всегда создается подрядчик
// @Param	body				body		authapimodels.RegisterRequest	true	"request body"
// @Success 200 {object} apimodels.Response{data=usersapimodels.UserView}
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/timesheet/register [post]
func (c *authApiController) register(ctx *fiber.Ctx) error {
	var payload authapimodels.RegisterRequest
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := usershandler.Instance.Register(payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка регистрации пользователя")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Получить информацию о текущем пользователе
// @Tags Аутентификация пользователей
// @Description Получить информацию о текущем пользователе
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=usersapimodels.UserView}
// @Failure 401 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/timesheet/me [get]
func (c *authApiController) me(ctx *fiber.Ctx) error {
	resp, err := usershandler.Instance.Me(middleware.GetUserID(ctx))
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения текущего пользователя")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

func sessionCookie(token string, expires time.Time) *fiber.Cookie {
	secure := false
	if config.Conf.Auth.CookieSecure != nil {
		secure = *config.Conf.Auth.CookieSecure
	}
	return &fiber.Cookie{
		Name:     config.Conf.Auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

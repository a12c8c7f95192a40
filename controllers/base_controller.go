package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"hr-timesheet-backend/middleware"
	"hr-timesheet-backend/models"
	apimodels "hr-timesheet-backend/models/api"
)

type BaseAPIController struct{}

func (c *BaseAPIController) BodyParser(ctx *fiber.Ctx, out interface{}) error {
	if err := ctx.BodyParser(out); err != nil {
		log.WithError(err).Error("ошибка распознавания запроса")
		return errors.New("не удалось получить данные из запроса")
	}
	return nil
}

func (c *BaseAPIController) GetID(ctx *fiber.Ctx) (string, error) {
	return c.GetIDByKey(ctx, "id")
}

func (c *BaseAPIController) GetIDByKey(ctx *fiber.Ctx, key string) (string, error) {
	id := strings.TrimSpace(ctx.Params(key))
	if id == "" {
		return "", errors.Errorf("не указан параметр %v", key)
	}
	return id, nil
}

func (c *BaseAPIController) GetLogger(ctx *fiber.Ctx) *log.Entry {
	return log.
		WithField("user_id", middleware.GetUserID(ctx)).
		WithField("path", ctx.Path())
}

// SendError ответ по виду ошибки, прочие ошибки логируются с message и отдаются как 500
func (c *BaseAPIController) SendError(ctx *fiber.Ctx, logger *log.Entry, err error, message string) error {
	appErr, ok := models.AsAppError(err)
	if !ok {
		logger.WithError(err).Error(message)
		return ctx.Status(fiber.StatusInternalServerError).JSON(apimodels.NewError(message))
	}
	switch appErr.Kind {
	case models.ErrorKindValidation, models.ErrorKindImmutableState:
		return ctx.Status(fiber.StatusBadRequest).JSON(c.errorResponse(appErr))
	case models.ErrorKindAuth:
		return ctx.Status(fiber.StatusUnauthorized).JSON(apimodels.NewError(appErr.Message))
	case models.ErrorKindAuthorization:
		return ctx.Status(fiber.StatusForbidden).JSON(apimodels.NewError(appErr.Message))
	case models.ErrorKindNotFound:
		return ctx.Status(fiber.StatusNotFound).JSON(apimodels.NewError(appErr.Message))
	case models.ErrorKindAlreadyProcessed:
		return ctx.Status(fiber.StatusConflict).JSON(c.errorResponse(appErr))
	}
	logger.WithError(err).Error(message)
	return ctx.Status(fiber.StatusInternalServerError).JSON(apimodels.NewError(message))
}

func (c *BaseAPIController) errorResponse(appErr *models.AppError) apimodels.Response {
	if appErr.Status == "" {
		return apimodels.NewError(appErr.Message)
	}
	return apimodels.NewErrorWithData(appErr.Message, fiber.Map{"status": appErr.Status})
}

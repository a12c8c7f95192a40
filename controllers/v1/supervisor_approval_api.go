package apiv1

import (
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"hr-timesheet-backend/controllers"
	timesheethandler "hr-timesheet-backend/lib/timesheet"
	apimodels "hr-timesheet-backend/models/api"
	timesheetapimodels "hr-timesheet-backend/models/api/timesheet"
)

// supervisorApprovalApiController согласование по ссылке из письма, без входа в систему
type supervisorApprovalApiController struct {
	controllers.BaseAPIController
}

func InitSupervisorApprovalApiRouters(app *fiber.App) {
	controller := supervisorApprovalApiController{}
	app.Route("supervisor/approval", func(router fiber.Router) {
		router.Get(":token", controller.view)
		router.Post(":token/approve", controller.approve)
		router.Post(":token/reject", controller.reject)
	})
}

func (c *supervisorApprovalApiController) getLogger(ctx *fiber.Ctx) *log.Entry {
	// токен в лог не пишется
	return log.WithField("path", ctx.Route().Path)
}

// @Summary Табель по ссылке согласования
// @Tags Согласование по ссылке
// @Description 404 для неизвестной ссылки, 409 с текущим статусом для обработанного табеля
// @Param   token          		path    string  				    	true         "токен ссылки"
// @Success 200 {object} apimodels.Response{data=timesheetapimodels.TimesheetView}
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/supervisor/approval/{token} [get]
func (c *supervisorApprovalApiController) view(ctx *fiber.Ctx) error {
	token, err := c.GetIDByKey(ctx, "token")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := timesheethandler.Instance.ViewByToken(token)
	if err != nil {
		return c.SendError(ctx, c.getLogger(ctx), err, "Ошибка получения табеля по ссылке")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Согласование по ссылке
// @Tags Согласование по ссылке
// @Description Подпись руководителя обязательна
// @Param   token          		path    string  				    	true         "токен ссылки"
// @Param	body body	 timesheetapimodels.ApproveRequest	true	"request body"
// @Success 200 {object} apimodels.Response{data=timesheetapimodels.TimesheetView}
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/supervisor/approval/{token}/approve [post]
func (c *supervisorApprovalApiController) approve(ctx *fiber.Ctx) error {
	token, err := c.GetIDByKey(ctx, "token")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload timesheetapimodels.ApproveRequest
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := timesheethandler.Instance.ApproveByToken(ctx.UserContext(), token, payload)
	if err != nil {
		return c.SendError(ctx, c.getLogger(ctx), err, "Ошибка согласования табеля по ссылке")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Отклонение по ссылке
// @Tags Согласование по ссылке
// @Description Причина отклонения обязательна
// @Param   token          		path    string  				    	true         "токен ссылки"
// @Param	body body	 timesheetapimodels.RejectRequest	true	"request body"
// @Success 200 {object} apimodels.Response{data=timesheetapimodels.TimesheetView}
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/supervisor/approval/{token}/reject [post]
func (c *supervisorApprovalApiController) reject(ctx *fiber.Ctx) error {
	token, err := c.GetIDByKey(ctx, "token")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload timesheetapimodels.RejectRequest
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := timesheethandler.Instance.RejectByToken(ctx.UserContext(), token, payload)
	if err != nil {
		return c.SendError(ctx, c.getLogger(ctx), err, "Ошибка отклонения табеля по ссылке")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

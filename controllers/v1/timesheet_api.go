package apiv1

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"hr-timesheet-backend/config"
	"hr-timesheet-backend/controllers"
	timesheethandler "hr-timesheet-backend/lib/timesheet"
	"hr-timesheet-backend/middleware"
	"hr-timesheet-backend/models"
	apimodels "hr-timesheet-backend/models/api"
	timesheetapimodels "hr-timesheet-backend/models/api/timesheet"
)

type timesheetApiController struct {
	controllers.BaseAPIController
}

func InitTimesheetApiRouters(app *fiber.App) {
	controller := timesheetApiController{}
	canSubmit := middleware.RoleRequired(models.UserRoleContractor, models.UserRoleAdmin)
	canApprove := middleware.RoleRequired(models.UserRoleSupervisor, models.UserRoleAdmin)
	app.Route("timesheets", func(router fiber.Router) {
		router.Use(middleware.AuthorizationRequired())
		router.Get("", controller.list)
		router.Get("export", canApprove, controller.export)
		router.Post("draft", canSubmit, controller.saveDraft)
		router.Post("submit", canSubmit, controller.submit)
		router.Get(":id", controller.get)
		router.Put(":id", controller.update)
		router.Delete(":id", controller.delete)
		router.Get(":id/download", controller.download)
		router.Post(":id/approve", canApprove, controller.approve)
		router.Post(":id/reject", canApprove, controller.reject)
	})
}

// @Summary Список табелей
// @Tags Табели
// @Description Подрядчик видит свои табели, руководитель очередь на согласование, администратор все
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   status				query		string	false	"draft | submitted | approved | rejected"
// @Param   period_from			query		string	false	"2006-01-02"
// @Param   period_to			query		string	false	"2006-01-02"
// @Param   page				query		int		false	"страница"
// @Param   limit				query		int		false	"записей на странице"
// @Success 200 {object} apimodels.ScrollerResponse{data=[]timesheetapimodels.TimesheetShortView}
// @Failure 400 {object} apimodels.Response
// @Failure 401 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/timesheets [get]
func (c *timesheetApiController) list(ctx *fiber.Ctx) error {
	var filter timesheetapimodels.TimesheetFilter
	if err := ctx.QueryParser(&filter); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError("некорректные параметры фильтра"))
	}
	list, rowCount, err := timesheethandler.Instance.List(middleware.GetActor(ctx), filter)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка табелей")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(list, rowCount))
}

// @Summary Выгрузка табелей в Excel
// @Tags Табели
// @Description Выгрузка табелей в Excel
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   status				query		string	false	"draft | submitted | approved | rejected"
// @Success 200
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/timesheets/export [get]
func (c *timesheetApiController) export(ctx *fiber.Ctx) error {
	var filter timesheetapimodels.TimesheetFilter
	if err := ctx.QueryParser(&filter); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError("некорректные параметры фильтра"))
	}
	data, err := timesheethandler.Instance.Export(middleware.GetActor(ctx), filter)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка выгрузки табелей в Excel")
	}
	fileName := fmt.Sprintf("timesheets-%v.xlsx", time.Now().Format("20060102-150405"))
	ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return ctx.SendStream(data)
}

// @Summary Сохранение черновика
// @Tags Табели
// @Description Создание черновика или обновление своего табеля без отправки
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 timesheetapimodels.TimesheetData	true	"request body"
// @Success 200 {object} apimodels.Response{data=timesheetapimodels.TimesheetView}
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/timesheets/draft [post]
func (c *timesheetApiController) saveDraft(ctx *fiber.Ctx) error {
	var payload timesheetapimodels.TimesheetData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := timesheethandler.Instance.SaveDraft(middleware.GetActor(ctx), payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка сохранения черновика табеля")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Отправка табеля на согласование
// @Tags Табели
// @Description JSON или multipart: поле data с JSON табеля и необязательный файл signedPdf
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 timesheetapimodels.TimesheetData	true	"request body"
// @Param   signedPdf		formData	file 	false 	"подписанный PDF"
// @Success 200 {object} apimodels.Response{data=timesheetapimodels.TimesheetView}
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/timesheets/submit [post]
func (c *timesheetApiController) submit(ctx *fiber.Ctx) error {
	var payload timesheetapimodels.TimesheetData
	var signedPdf []byte
	if strings.HasPrefix(ctx.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		var err error
		payload, signedPdf, err = c.parseMultipartSubmit(ctx)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
		}
	} else if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := timesheethandler.Instance.Submit(ctx.UserContext(), middleware.GetActor(ctx), payload, signedPdf)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка отправки табеля на согласование")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

func (c *timesheetApiController) parseMultipartSubmit(ctx *fiber.Ctx) (payload timesheetapimodels.TimesheetData, signedPdf []byte, err error) {
	data := ctx.FormValue("data")
	if data == "" {
		return payload, nil, errors.New("не передано поле data")
	}
	if err = json.Unmarshal([]byte(data), &payload); err != nil {
		c.GetLogger(ctx).WithError(err).Error("ошибка распознавания поля data")
		return payload, nil, errors.New("не удалось получить данные из запроса")
	}
	file, err := ctx.FormFile("signedPdf")
	if err != nil {
		// файл необязателен
		return payload, nil, nil
	}
	if file.Size > config.Conf.Timesheet.MaxSignedPdfSize {
		return payload, nil, errors.Errorf("размер PDF превышает %d байт", config.Conf.Timesheet.MaxSignedPdfSize)
	}
	buffer, err := file.Open()
	if err != nil {
		c.GetLogger(ctx).WithError(err).Error("ошибка при получении подписанного PDF")
		return payload, nil, errors.New("не удалось прочитать файл")
	}
	defer buffer.Close()
	signedPdf, err = io.ReadAll(buffer)
	if err != nil {
		c.GetLogger(ctx).WithError(err).Error("ошибка при загрузке подписанного PDF")
		return payload, nil, errors.New("не удалось прочитать файл")
	}
	return payload, signedPdf, nil
}

// @Summary Получение табеля
// @Tags Табели
// @Description Табель с записями по дням
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "timesheet ID"
// @Success 200 {object} apimodels.Response{data=timesheetapimodels.TimesheetView}
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/timesheets/{id} [get]
func (c *timesheetApiController) get(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := timesheethandler.Instance.Get(middleware.GetActor(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения табеля")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Изменение табеля
// @Tags Табели
// @Description Статус не меняется, согласованный табель изменить нельзя
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "timesheet ID"
// @Param	body body	 timesheetapimodels.TimesheetData	true	"request body"
// @Success 200 {object} apimodels.Response{data=timesheetapimodels.TimesheetView}
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/timesheets/{id} [put]
func (c *timesheetApiController) update(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload timesheetapimodels.TimesheetData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := timesheethandler.Instance.Update(middleware.GetActor(ctx), id, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка изменения табеля")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Удаление табеля
// @Tags Табели
// @Description Удаление табеля
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "timesheet ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/timesheets/{id} [delete]
func (c *timesheetApiController) delete(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	err = timesheethandler.Instance.Delete(ctx.UserContext(), middleware.GetActor(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка удаления табеля")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Скачать табель в PDF
// @Tags Табели
// @Description source=upload отдает загруженный подрядчиком подписанный PDF
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "timesheet ID"
// @Param   source				query		string	false	"upload"
// @Success 200
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/timesheets/{id}/download [get]
func (c *timesheetApiController) download(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	body, fileName, err := timesheethandler.Instance.Download(ctx.UserContext(), middleware.GetActor(ctx), id, ctx.Query("source"))
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка формирования PDF табеля")
	}
	ctx.Set(fiber.HeaderContentType, "application/pdf")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return ctx.Send(body)
}

// @Summary Согласование табеля
// @Tags Табели
// @Description Согласование из кабинета руководителя
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "timesheet ID"
// @Param	body body	 timesheetapimodels.ApproveRequest	true	"request body"
// @Success 200 {object} apimodels.Response{data=timesheetapimodels.TimesheetView}
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/timesheets/{id}/approve [post]
func (c *timesheetApiController) approve(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload timesheetapimodels.ApproveRequest
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := timesheethandler.Instance.ApproveByID(ctx.UserContext(), middleware.GetActor(ctx), id, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка согласования табеля")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Отклонение табеля
// @Tags Табели
// @Description Отклонение из кабинета руководителя, причина обязательна
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "timesheet ID"
// @Param	body body	 timesheetapimodels.RejectRequest	true	"request body"
// @Success 200 {object} apimodels.Response{data=timesheetapimodels.TimesheetView}
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/timesheets/{id}/reject [post]
func (c *timesheetApiController) reject(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload timesheetapimodels.RejectRequest
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := timesheethandler.Instance.RejectByID(ctx.UserContext(), middleware.GetActor(ctx), id, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка отклонения табеля")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	botnotify "hr-timesheet-backend/lib/utils/bot-notify"
)

func ErrNotify(notifier botnotify.Provider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if notifier == nil {
			return err
		}
		statusCode := c.Response().StatusCode()
		if statusCode < http.StatusInternalServerError {
			return err
		}
		body := c.Response().Body()
		var data struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		}
		if unmErr := json.Unmarshal(body, &data); unmErr != nil {
			log.WithError(unmErr).Warn("ошибка разбора тела ответа для оповещения")
		}
		method := c.Method()
		path := c.OriginalURL()
		if r := c.Route(); r != nil {
			path = r.Path
		}
		msg := data.Message
		if msg == "" {
			msg = string(body)
		}
		go func() {
			if sendErr := notifier.SendError(botnotify.FormatServerError(statusCode, method, path, msg)); sendErr != nil {
				log.WithError(sendErr).Warn("ошибка отправки оповещения об ошибке")
			}
		}()
		return err
	}
}

package fiberlog

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	app := fiber.New()
	app.Use(New(Config{
		Logger: logger,
		Tags:   []string{TagMethod, TagRoute, TagStatus},
	}))
	app.Get("/supervisor/approval/:token", func(ctx *fiber.Ctx) error {
		return ctx.SendStatus(fiber.StatusOK)
	})
	app.Get("/fail", func(ctx *fiber.Ctx) error {
		return ctx.SendStatus(fiber.StatusInternalServerError)
	})

	t.Run(`route without params`, func(t *testing.T) {
		hook.Reset()
		_, err := app.Test(httptest.NewRequest(http.MethodGet, "/supervisor/approval/secret-token", nil))
		require.Nil(t, err)
		entry := hook.LastEntry()
		require.NotNil(t, entry)
		require.Equal(t, log.InfoLevel, entry.Level)
		require.Equal(t, http.MethodGet, entry.Data[TagMethod])
		require.Equal(t, "/supervisor/approval/:token", entry.Data[TagRoute])
		require.Equal(t, fiber.StatusOK, entry.Data[TagStatus])
	})

	t.Run(`server error logged as error`, func(t *testing.T) {
		hook.Reset()
		_, err := app.Test(httptest.NewRequest(http.MethodGet, "/fail", nil))
		require.Nil(t, err)
		entry := hook.LastEntry()
		require.NotNil(t, entry)
		require.Equal(t, log.ErrorLevel, entry.Level)
	})
}

package fiberlog

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	TagPid           = "pid"
	TagReferer       = "referer"
	TagProtocol      = "protocol"
	TagIP            = "ip"
	TagIPs           = "ips"
	TagHost          = "host"
	TagMethod        = "method"
	TagPath          = "path"
	TagRoute         = "route"
	TagURL           = "url"
	TagUA            = "ua"
	TagLatency       = "latency"
	TagStatus        = "status"
	TagBody          = "body"
	TagResBody       = "res_body"
	TagBytesReceived = "bytes_received"
	TagBytesSent     = "bytes_sent"
	TagQueryParams   = "query"
	TagRequestID     = "request_id"
	TagUserID        = "user_id"
)

// FuncTag значение поля лога для запроса
type FuncTag func(c *fiber.Ctx, d *data) interface{}

type data struct {
	pid   int
	start time.Time
	end   time.Time
}

// тело запроса не логируется для загрузки файлов
const maxLoggedBody = 4096

func getFuncTagMap(cfg Config) map[string]FuncTag {
	all := map[string]FuncTag{
		TagPid:      func(_ *fiber.Ctx, d *data) interface{} { return d.pid },
		TagReferer:  func(c *fiber.Ctx, _ *data) interface{} { return c.Get(fiber.HeaderReferer) },
		TagProtocol: func(c *fiber.Ctx, _ *data) interface{} { return c.Protocol() },
		TagIP:       func(c *fiber.Ctx, _ *data) interface{} { return c.IP() },
		TagIPs:      func(c *fiber.Ctx, _ *data) interface{} { return c.Get(fiber.HeaderXForwardedFor) },
		TagHost:     func(c *fiber.Ctx, _ *data) interface{} { return c.Hostname() },
		TagMethod:   func(c *fiber.Ctx, _ *data) interface{} { return c.Method() },
		TagPath:     func(c *fiber.Ctx, _ *data) interface{} { return c.Path() },
		TagRoute: func(c *fiber.Ctx, _ *data) interface{} {
			if r := c.Route(); r != nil {
				return r.Path
			}
			return ""
		},
		TagURL:     func(c *fiber.Ctx, _ *data) interface{} { return c.OriginalURL() },
		TagUA:      func(c *fiber.Ctx, _ *data) interface{} { return c.Get(fiber.HeaderUserAgent) },
		TagLatency: func(_ *fiber.Ctx, d *data) interface{} { return d.end.Sub(d.start).String() },
		TagStatus:  func(c *fiber.Ctx, _ *data) interface{} { return c.Response().StatusCode() },
		TagBody: func(c *fiber.Ctx, _ *data) interface{} {
			if len(c.Body()) > maxLoggedBody {
				return ""
			}
			return string(c.Body())
		},
		TagResBody: func(c *fiber.Ctx, _ *data) interface{} {
			body := c.Response().Body()
			if len(body) > maxLoggedBody {
				return ""
			}
			return string(body)
		},
		TagBytesReceived: func(c *fiber.Ctx, _ *data) interface{} { return len(c.Request().Body()) },
		TagBytesSent:     func(c *fiber.Ctx, _ *data) interface{} { return len(c.Response().Body()) },
		TagQueryParams:   func(c *fiber.Ctx, _ *data) interface{} { return c.Request().URI().QueryArgs().String() },
		TagRequestID: func(c *fiber.Ctx, _ *data) interface{} {
			if id, ok := c.Locals("requestid").(string); ok {
				return id
			}
			return c.GetRespHeader(fiber.HeaderXRequestID)
		},
		TagUserID: func(c *fiber.Ctx, _ *data) interface{} { return userIDFromLocals(c) },
	}
	ftm := make(map[string]FuncTag, len(cfg.Tags))
	for _, tag := range cfg.Tags {
		if ft, ok := all[tag]; ok {
			ftm[tag] = ft
		}
	}
	return ftm
}

package fiberlog

import "github.com/sirupsen/logrus"

// Config настройки middleware логирования запросов
type Config struct {
	Logger *logrus.Logger
	Tags   []string
}

// ConfigDefault без тела запроса: в нем бывают пароли и подписи
var ConfigDefault = Config{
	Tags: []string{
		TagMethod,
		TagRoute,
		TagStatus,
		TagLatency,
		TagRequestID,
	},
}

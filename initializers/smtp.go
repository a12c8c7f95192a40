package initializers

import (
	"hr-timesheet-backend/config"
	"hr-timesheet-backend/lib/smtp"
)

func InitSmtp() {
	err := smtp.Connect(smtp.Settings{
		User:       config.Conf.Smtp.User,
		Password:   config.Conf.Smtp.Password,
		Host:       config.Conf.Smtp.Host,
		Port:       config.Conf.Smtp.Port,
		TLSEnabled: *config.Conf.Smtp.TLSEnabled,
		FromEmail:  config.Conf.Smtp.FromEmail,
		FromName:   config.Conf.Smtp.FromName,
		Transport:  config.Conf.Mail.Transport,
		SesRegion:  config.Conf.Mail.SesRegion,
	})
	if err != nil {
		panic(err.Error())
	}
}

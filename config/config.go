package config

import (
	"github.com/gotify/configor"
)

var Conf *Configuration

type Configuration struct {
	App struct {
		ListenAddr string `default:"" env:"APP_HOST"`
		Port       int    `default:"8080"  env:"APP_PORT"`
		BodyLimit  int    `default:"20971520" env:"APP_BODY_LIMIT"`
		// адрес сайта, из него строится ссылка согласования для руководителя
		PublicURL string `default:"http://localhost:3000" env:"APP_PUBLIC_URL"`
	}
	Database struct {
		Host           string `default:"127.0.0.1" env:"DB_HOST"`
		Port           string `default:"5432" env:"DB_PORT"`
		Name           string `default:"hr-timesheet" env:"DB_NAME"`
		User           string `default:"postgres" env:"DB_USER"`
		Password       string `default:"postgres" env:"DB_PASSWORD"`
		MigrateOnStart *bool  `default:"true" env:"DB_MIGRATE_ON_START"`
		DebugMode      *bool  `default:"false" env:"DB_DEBUG_MODE"`
	}
	Auth struct {
		JWTSecret      string `default:"change-me" env:"JWT_SECRET"`
		JWTExpireInSec int64  `default:"86400" env:"JWT_EXPIRE_IN_SEC"`
		CookieName     string `default:"timesheet_session" env:"AUTH_COOKIE_NAME"`
		CookieSecure   *bool  `default:"false" env:"AUTH_COOKIE_SECURE"`
	}
	Smtp struct {
		User       string `default:"" env:"SMTP_USER"`
		Password   string `default:"" env:"SMTP_PASSWORD"`
		Host       string `default:"" env:"SMTP_HOST"`
		Port       string `default:"" env:"SMTP_PORT"`
		TLSEnabled *bool  `default:"true" env:"SMTP_TLS_ENABLED"`
		FromEmail  string `default:"" env:"SMTP_FROM_EMAIL"`
		FromName   string `default:"HR Timesheets" env:"SMTP_FROM_NAME"`
	}
	Mail struct {
		// smtp | ses
		Transport string `default:"smtp" env:"MAIL_TRANSPORT"`
		SesRegion string `default:"" env:"MAIL_SES_REGION"`
	}
	S3 struct {
		Endpoint        string `default:"" env:"S3_ENDPOINT"`
		AccessKeyID     string `default:"" env:"S3_ACCESS_KEY_ID"`
		SecretAccessKey string `default:"" env:"S3_SECRET_ACCESS_KEY"`
		BucketName      string `default:"timesheets" env:"S3_BUCKET_NAME"`
		UseSSL          *bool  `default:"false" env:"S3_USE_SSL"`
	}
	Admin struct {
		Email    string `default:"" env:"ADMIN_EMAIL"`
		Password string `default:"" env:"ADMIN_PASSWORD"`
		Name     string `default:"Администратор" env:"ADMIN_NAME"`
	}
	Timesheet struct {
		MaxSignedPdfSize int64  `default:"10485760" env:"TIMESHEET_MAX_SIGNED_PDF_SIZE"`
		MaxSignatureSize int    `default:"1048576" env:"TIMESHEET_MAX_SIGNATURE_SIZE"`
		CompanyName      string `default:"HR Services" env:"TIMESHEET_COMPANY_NAME"`
		FontDir          string `default:"static/font/" env:"TIMESHEET_FONT_DIR"`
	}
	Notify struct {
		SlackToken          string `default:"" env:"SLACK_BOT_TOKEN"`
		SlackErrorChannelID string `default:"" env:"SLACK_ERROR_CHANNEL"`
	}
}

func configFiles() []string {
	return []string{"config.yml"}
}

func InitConfig() {
	if Conf != nil {
		return
	}
	conf := new(Configuration)
	err := configor.New(&configor.Config{}).Load(conf, configFiles()...)
	if err != nil {
		panic(err)
	}
	Conf = conf
}

package initializers

import (
	"context"

	"hr-timesheet-backend/config"
	"hr-timesheet-backend/fiberlog"
	projectprovider "hr-timesheet-backend/lib/dicts/project"
	xlsexport "hr-timesheet-backend/lib/export/xls"
	filestorage "hr-timesheet-backend/lib/file-storage"
	timesheethandler "hr-timesheet-backend/lib/timesheet"
	usershandler "hr-timesheet-backend/lib/users"
	botnotify "hr-timesheet-backend/lib/utils/bot-notify"
)

var LoggerConfig *fiberlog.Config

func InitAllServices(ctx context.Context) {
	LoggerConfig = InitLogger()
	config.InitConfig()
	InitDBConnection()
	InitS3(ctx)
	InitSmtp()
	botnotify.NewHandler()
	filestorage.NewHandler()
	xlsexport.NewHandler()
	usershandler.NewHandler()
	projectprovider.NewHandler()
	timesheethandler.NewHandler()
}

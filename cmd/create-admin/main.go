package main

import (
	"flag"

	log "github.com/sirupsen/logrus"
	"hr-timesheet-backend/config"
	"hr-timesheet-backend/db"
	"hr-timesheet-backend/initializers"
)

// создание администратора из командной строки:
// go run ./cmd/create-admin -email admin@example.com -password secret-pass -name "Администратор"
func main() {
	email := flag.String("email", "", "почта администратора")
	password := flag.String("password", "", "пароль, не менее 8 символов")
	name := flag.String("name", "Администратор", "имя")
	flag.Parse()

	initializers.InitLogger()
	config.InitConfig()
	if *email == "" {
		log.Fatal("не указана почта администратора")
	}
	err := db.Connect(db.Settings{
		Host:     config.Conf.Database.Host,
		Port:     config.Conf.Database.Port,
		Name:     config.Conf.Database.Name,
		User:     config.Conf.Database.User,
		Password: config.Conf.Database.Password,
		Migrate:  *config.Conf.Database.MigrateOnStart,
	})
	if err != nil {
		log.WithError(err).Fatal("ошибка подключения к БД")
	}
	created, err := db.AddAdmin(*email, *password, *name)
	if err != nil {
		log.WithError(err).Fatal("ошибка добавления администратора")
	}
	if !created {
		log.WithField("email", *email).Warn("пользователь с такой почтой уже существует")
		return
	}
	log.WithField("email", *email).Info("администратор добавлен")
}

package db

import (
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"hr-timesheet-backend/config"
	usersstore "hr-timesheet-backend/lib/users/store"
	authutils "hr-timesheet-backend/lib/utils/auth-utils"
	"hr-timesheet-backend/models"
	dbmodels "hr-timesheet-backend/models/db"
)

func InitPreload() {
	if config.Conf.Admin.Email == "" {
		log.Warn("администратор не добавлен, отсутвует настройка ADMIN_EMAIL")
		return
	}
	created, err := AddAdmin(config.Conf.Admin.Email, config.Conf.Admin.Password, config.Conf.Admin.Name)
	if err != nil {
		log.WithError(err).Error("ошибка добавления администратора")
		return
	}
	if created {
		log.WithField("email", config.Conf.Admin.Email).Info("добавлен администратор")
	}
}

// AddAdmin создает администратора, если пользователя с такой почтой еще нет
func AddAdmin(email, password, name string) (created bool, err error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if len(password) < 8 {
		return false, errors.New("пароль администратора должен содержать не менее 8 символов")
	}
	store := usersstore.NewInstance(DB)
	existedRec, err := store.FindByEmail(email)
	if err != nil {
		return false, err
	}
	if existedRec != nil {
		return false, nil
	}
	hash, err := authutils.HashPassword(password)
	if err != nil {
		return false, err
	}
	rec := dbmodels.TimesheetUser{
		Email:    email,
		Name:     name,
		Role:     models.UserRoleAdmin,
		Password: hash,
		IsActive: true,
	}
	_, err = store.Create(rec)
	if err != nil {
		return false, err
	}
	return true, nil
}

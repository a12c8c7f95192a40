package usershandler

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"hr-timesheet-backend/db"
	usersstore "hr-timesheet-backend/lib/users/store"
	authutils "hr-timesheet-backend/lib/utils/auth-utils"
	"hr-timesheet-backend/models"
	authapimodels "hr-timesheet-backend/models/api/auth"
	usersapimodels "hr-timesheet-backend/models/api/users"
	dbmodels "hr-timesheet-backend/models/db"
)

type Provider interface {
	Login(email, password string) (response authapimodels.JWTResponse, err error)
	Me(userID string) (*usersapimodels.UserView, error)
	Register(request authapimodels.RegisterRequest) (*usersapimodels.UserView, error)
	Create(data usersapimodels.UserData) (id string, err error)
	Update(id string, data usersapimodels.UserData) error
	Deactivate(actor models.Actor, id string) error
	IsActive(userID string) (bool, error)
	GetByID(id string) (*usersapimodels.UserView, error)
	List(filter usersapimodels.UserFilter) (list []usersapimodels.UserView, rowCount int64, err error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store: usersstore.NewInstance(db.DB),
	}
}

type impl struct {
	store usersstore.Provider
}

func (i impl) getLogger(userID string) *log.Entry {
	return log.WithField("user_id", userID)
}

func (i impl) Login(email, password string) (response authapimodels.JWTResponse, err error) {
	logger := log.WithField("email", email)
	user, err := i.store.FindByEmail(email)
	if err != nil {
		logger.
			WithError(err).
			Error("ошибка поиска пользователя по почте")
		return authapimodels.JWTResponse{}, err
	}
	if user == nil {
		logger.Debug("пользователь с такой почтой не найден")
		return authapimodels.JWTResponse{}, models.NewAuthError("неверная почта или пароль")
	}
	if !authutils.CheckPassword(user.Password, password) {
		logger.Debug("пользователь не прошел проверку пароля")
		return authapimodels.JWTResponse{}, models.NewAuthError("неверная почта или пароль")
	}
	if !user.IsActive {
		logger.Debug("пользователь заблокирован")
		return authapimodels.JWTResponse{}, models.NewAuthError("пользователь заблокирован")
	}
	tokenString, expiresAt, err := authutils.GetToken(user.ID, user.Name, user.Role)
	if err != nil {
		logger.WithError(err).Error("ошибка генерации JWT")
		return authapimodels.JWTResponse{}, err
	}
	now := time.Now()
	err = i.store.Update(user.ID, map[string]interface{}{"last_login": now})
	if err != nil {
		logger.
			WithError(err).
			Error("ошибка обновления даты последнего входа")
	}
	user.LastLogin = &now
	return authapimodels.JWTResponse{
		Token:     tokenString,
		ExpiresAt: expiresAt,
		User:      usersapimodels.UserConvert(*user),
	}, nil
}

func (i impl) Me(userID string) (*usersapimodels.UserView, error) {
	user, err := i.store.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, models.NewAuthError("пользователь не найден")
	}
	result := usersapimodels.UserConvert(*user)
	return &result, nil
}

func (i impl) Register(request authapimodels.RegisterRequest) (*usersapimodels.UserView, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}
	email := usersapimodels.NormalizeEmail(request.Email)
	if err := i.checkEmail(email, ""); err != nil {
		return nil, err
	}
	hash, err := authutils.HashPassword(request.Password)
	if err != nil {
		return nil, err
	}
	rec := dbmodels.TimesheetUser{
		Email:       email,
		Name:        strings.TrimSpace(request.Name),
		Role:        models.UserRoleContractor,
		CompanyName: request.CompanyName,
		Department:  request.Department,
		Phone:       request.Phone,
		Password:    hash,
		IsActive:    true,
	}
	id, err := i.store.Create(rec)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка регистрации пользователя")
	}
	i.getLogger(id).WithField("email", email).Info("зарегистрирован подрядчик")
	return i.GetByID(id)
}

func (i impl) Create(data usersapimodels.UserData) (id string, err error) {
	if err = data.ValidateCreate(); err != nil {
		return "", err
	}
	email := usersapimodels.NormalizeEmail(data.Email)
	if err = i.checkEmail(email, ""); err != nil {
		return "", err
	}
	supervisorID, err := i.checkSupervisor(data.SupervisorID, "")
	if err != nil {
		return "", err
	}
	hash, err := authutils.HashPassword(data.Password)
	if err != nil {
		return "", err
	}
	rec := dbmodels.TimesheetUser{
		Email:        email,
		Name:         strings.TrimSpace(data.Name),
		Role:         data.Role,
		CompanyName:  data.CompanyName,
		Department:   data.Department,
		Phone:        data.Phone,
		Password:     hash,
		SupervisorID: supervisorID,
		IsActive:     true,
	}
	id, err = i.store.Create(rec)
	if err != nil {
		return "", errors.Wrap(err, "ошибка создания пользователя")
	}
	i.getLogger(id).WithField("role", data.Role).Info("создан пользователь")
	return id, nil
}

func (i impl) Update(id string, data usersapimodels.UserData) error {
	if err := data.Validate(); err != nil {
		return err
	}
	if data.Password != "" && len(data.Password) < 8 {
		return models.NewValidationError("пароль должен содержать не менее 8 символов")
	}
	rec, err := i.store.GetByID(id)
	if err != nil {
		return err
	}
	if rec == nil {
		return models.NewNotFoundError("пользователь не найден")
	}
	email := usersapimodels.NormalizeEmail(data.Email)
	if err = i.checkEmail(email, id); err != nil {
		return err
	}
	supervisorID, err := i.checkSupervisor(data.SupervisorID, id)
	if err != nil {
		return err
	}
	updMap := map[string]interface{}{
		"email":         email,
		"name":          strings.TrimSpace(data.Name),
		"role":          data.Role,
		"company_name":  data.CompanyName,
		"department":    data.Department,
		"phone":         data.Phone,
		"supervisor_id": supervisorID,
	}
	if data.Password != "" {
		hash, err := authutils.HashPassword(data.Password)
		if err != nil {
			return err
		}
		updMap["password"] = hash
	}
	err = i.store.Update(id, updMap)
	if err != nil {
		return errors.Wrap(err, "ошибка обновления пользователя")
	}
	i.getLogger(id).Info("пользователь изменен")
	return nil
}

// Deactivate пользователь не удаляется, на него могут ссылаться табели
func (i impl) Deactivate(actor models.Actor, id string) error {
	if actor.UserID == id {
		return models.NewValidationError("нельзя заблокировать самого себя")
	}
	rec, err := i.store.GetByID(id)
	if err != nil {
		return err
	}
	if rec == nil {
		return models.NewNotFoundError("пользователь не найден")
	}
	err = i.store.Update(id, map[string]interface{}{"is_active": false})
	if err != nil {
		return errors.Wrap(err, "ошибка блокировки пользователя")
	}
	i.getLogger(id).WithField("actor_id", actor.UserID).Info("пользователь заблокирован")
	return nil
}

// IsActive удаленный и заблокированный пользователь не активен
func (i impl) IsActive(userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	rec, err := i.store.GetByID(userID)
	if err != nil {
		return false, errors.Wrap(err, "ошибка получения пользователя")
	}
	return rec != nil && rec.IsActive, nil
}

func (i impl) GetByID(id string) (*usersapimodels.UserView, error) {
	rec, err := i.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, models.NewNotFoundError("пользователь не найден")
	}
	result := usersapimodels.UserConvert(*rec)
	return &result, nil
}

func (i impl) List(filter usersapimodels.UserFilter) (list []usersapimodels.UserView, rowCount int64, err error) {
	if err = filter.Validate(); err != nil {
		return nil, 0, err
	}
	storeFilter := usersstore.Filter{
		Role:     filter.Role,
		IsActive: filter.IsActive,
		Search:   strings.TrimSpace(filter.Search),
	}
	rowCount, err = i.store.ListCount(storeFilter)
	if err != nil {
		return nil, 0, err
	}
	list = []usersapimodels.UserView{}
	if rowCount == 0 {
		return list, 0, nil
	}
	storeFilter.Offset, storeFilter.Limit = filter.GetOffset()
	recList, err := i.store.List(storeFilter)
	if err != nil {
		return nil, 0, err
	}
	for _, rec := range recList {
		list = append(list, usersapimodels.UserConvert(rec))
	}
	return list, rowCount, nil
}

func (i impl) checkEmail(email, exceptID string) error {
	rec, err := i.store.FindByEmail(email)
	if err != nil {
		return err
	}
	if rec != nil && rec.ID != exceptID {
		return models.NewValidationError("пользователь с такой почтой уже существует")
	}
	return nil
}

func (i impl) checkSupervisor(supervisorID *string, userID string) (*string, error) {
	if supervisorID == nil || *supervisorID == "" {
		return nil, nil
	}
	if *supervisorID == userID {
		return nil, models.NewValidationError("пользователь не может быть руководителем самому себе")
	}
	rec, err := i.store.GetByID(*supervisorID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, models.NewValidationError("руководитель не найден")
	}
	if !rec.Role.CanApprove() {
		return nil, models.NewValidationError("указанный пользователь не может быть руководителем")
	}
	return supervisorID, nil
}

package usershandler

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"hr-timesheet-backend/config"
	usersstore "hr-timesheet-backend/lib/users/store"
	authutils "hr-timesheet-backend/lib/utils/auth-utils"
	"hr-timesheet-backend/models"
	authapimodels "hr-timesheet-backend/models/api/auth"
	usersapimodels "hr-timesheet-backend/models/api/users"
	dbmodels "hr-timesheet-backend/models/db"
)

type memoryStore struct {
	users map[string]dbmodels.TimesheetUser
}

func (s *memoryStore) Create(rec dbmodels.TimesheetUser) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}
	rec.ID = uuid.NewString()
	s.users[rec.ID] = rec
	return rec.ID, nil
}

func (s *memoryStore) GetByID(id string) (*dbmodels.TimesheetUser, error) {
	rec, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *memoryStore) FindByEmail(email string) (*dbmodels.TimesheetUser, error) {
	for _, rec := range s.users {
		if strings.EqualFold(rec.Email, strings.TrimSpace(email)) {
			return &rec, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) Update(id string, updMap map[string]interface{}) error {
	rec := s.users[id]
	for key, value := range updMap {
		switch key {
		case "last_login":
			lastLogin := value.(time.Time)
			rec.LastLogin = &lastLogin
		case "is_active":
			rec.IsActive = value.(bool)
		case "password":
			rec.Password = value.(string)
		case "name":
			rec.Name = value.(string)
		case "email":
			rec.Email = value.(string)
		case "role":
			rec.Role = value.(models.UserRole)
		case "supervisor_id":
			rec.SupervisorID = value.(*string)
		}
	}
	s.users[id] = rec
	return nil
}

func (s *memoryStore) List(filter usersstore.Filter) ([]dbmodels.TimesheetUser, error) {
	list := []dbmodels.TimesheetUser{}
	for _, rec := range s.users {
		if filter.Role != "" && rec.Role != filter.Role {
			continue
		}
		list = append(list, rec)
	}
	return list, nil
}

func (s *memoryStore) ListCount(filter usersstore.Filter) (int64, error) {
	list, err := s.List(filter)
	return int64(len(list)), err
}

func newTestHandler(t *testing.T) (impl, *memoryStore) {
	config.Conf = &config.Configuration{}
	config.Conf.Auth.JWTSecret = "test-secret"
	config.Conf.Auth.JWTExpireInSec = 3600
	store := &memoryStore{users: map[string]dbmodels.TimesheetUser{}}
	return impl{store: store}, store
}

func TestRegisterAndLogin(t *testing.T) {
	h, store := newTestHandler(t)

	user, err := h.Register(authapimodels.RegisterRequest{
		Email:    "Ivan@Example.com",
		Password: "secret-password",
		Name:     "Иван",
	})
	require.Nil(t, err)
	require.Equal(t, models.UserRoleContractor, user.Role)
	require.Equal(t, "ivan@example.com", user.Email)
	require.NotEqual(t, "secret-password", store.users[user.ID].Password)

	t.Run(`duplicate email`, func(t *testing.T) {
		_, err := h.Register(authapimodels.RegisterRequest{Email: "IVAN@example.com", Password: "another-pass", Name: "Иван"})
		require.True(t, models.IsErrorKind(err, models.ErrorKindValidation))
	})

	t.Run(`login`, func(t *testing.T) {
		response, err := h.Login("ivan@example.com", "secret-password")
		require.Nil(t, err)
		require.NotEmpty(t, response.Token)
		require.Equal(t, user.ID, response.User.ID)

		token, err := jwt.Parse(response.Token, func(token *jwt.Token) (interface{}, error) {
			return []byte("test-secret"), nil
		})
		require.Nil(t, err)
		claims := token.Claims.(jwt.MapClaims)
		require.Equal(t, user.ID, claims["sub"])
		require.Equal(t, "contractor", claims["role"])
		require.NotNil(t, store.users[user.ID].LastLogin)
	})

	t.Run(`wrong password`, func(t *testing.T) {
		_, err := h.Login("ivan@example.com", "wrong-password")
		require.True(t, models.IsErrorKind(err, models.ErrorKindAuth))
	})

	t.Run(`unknown email`, func(t *testing.T) {
		_, err := h.Login("nobody@example.com", "secret-password")
		require.True(t, models.IsErrorKind(err, models.ErrorKindAuth))
	})

	t.Run(`deactivated user cannot login`, func(t *testing.T) {
		active, err := h.IsActive(user.ID)
		require.Nil(t, err)
		require.True(t, active)

		admin := models.Actor{UserID: "admin-1", Role: models.UserRoleAdmin}
		require.Nil(t, h.Deactivate(admin, user.ID))
		active, err = h.IsActive(user.ID)
		require.Nil(t, err)
		require.False(t, active)
		_, err = h.Login("ivan@example.com", "secret-password")
		require.True(t, models.IsErrorKind(err, models.ErrorKindAuth))
		_, err = h.Me(user.ID)
		require.True(t, models.IsErrorKind(err, models.ErrorKindAuth))
		require.Equal(t, "ivan@example.com", store.users[user.ID].Email)
		require.False(t, store.users[user.ID].IsActive)
	})
}

func TestIsActive(t *testing.T) {
	h, _ := newTestHandler(t)
	for _, id := range []string{"", "missing"} {
		active, err := h.IsActive(id)
		require.Nil(t, err)
		require.False(t, active)
	}
}

func TestAdminUsers(t *testing.T) {
	h, store := newTestHandler(t)
	hash, err := authutils.HashPassword("admin-password")
	require.Nil(t, err)
	store.users["admin-1"] = dbmodels.TimesheetUser{BaseModel: dbmodels.BaseModel{ID: "admin-1"}, Email: "admin@example.com", Role: models.UserRoleAdmin, Password: hash, IsActive: true}
	admin := models.Actor{UserID: "admin-1", Role: models.UserRoleAdmin}

	supervisorID, err := h.Create(usersapimodels.UserData{
		Email:    "sup@x.com",
		Name:     "Анна",
		Role:     models.UserRoleSupervisor,
		Password: "supervisor-pass",
	})
	require.Nil(t, err)

	t.Run(`short password`, func(t *testing.T) {
		_, err := h.Create(usersapimodels.UserData{Email: "a@x.com", Name: "A", Role: models.UserRoleContractor, Password: "short"})
		require.True(t, models.IsErrorKind(err, models.ErrorKindValidation))
	})

	t.Run(`unknown role`, func(t *testing.T) {
		_, err := h.Create(usersapimodels.UserData{Email: "a@x.com", Name: "A", Role: "owner", Password: "long-password"})
		require.True(t, models.IsErrorKind(err, models.ErrorKindValidation))
	})

	t.Run(`contractor with supervisor`, func(t *testing.T) {
		id, err := h.Create(usersapimodels.UserData{
			Email:        "c@x.com",
			Name:         "Подрядчик",
			Role:         models.UserRoleContractor,
			Password:     "contractor-pass",
			SupervisorID: &supervisorID,
		})
		require.Nil(t, err)
		require.Equal(t, supervisorID, *store.users[id].SupervisorID)

		contractorID := id
		err = h.Update(supervisorID, usersapimodels.UserData{
			Email:        "sup@x.com",
			Name:         "Анна",
			Role:         models.UserRoleSupervisor,
			SupervisorID: &contractorID,
		})
		require.True(t, models.IsErrorKind(err, models.ErrorKindValidation))
	})

	t.Run(`update keeps password when empty`, func(t *testing.T) {
		before := store.users[supervisorID].Password
		err := h.Update(supervisorID, usersapimodels.UserData{Email: "sup@x.com", Name: "Анна Смирнова", Role: models.UserRoleSupervisor})
		require.Nil(t, err)
		require.Equal(t, before, store.users[supervisorID].Password)
		require.Equal(t, "Анна Смирнова", store.users[supervisorID].Name)
	})

	t.Run(`email taken by another user`, func(t *testing.T) {
		err := h.Update(supervisorID, usersapimodels.UserData{Email: "admin@example.com", Name: "Анна", Role: models.UserRoleSupervisor})
		require.True(t, models.IsErrorKind(err, models.ErrorKindValidation))
	})

	t.Run(`admin cannot deactivate self`, func(t *testing.T) {
		err := h.Deactivate(admin, admin.UserID)
		require.True(t, models.IsErrorKind(err, models.ErrorKindValidation))
	})

	t.Run(`list by role`, func(t *testing.T) {
		list, rowCount, err := h.List(usersapimodels.UserFilter{Role: models.UserRoleSupervisor})
		require.Nil(t, err)
		require.Equal(t, int64(1), rowCount)
		require.Equal(t, supervisorID, list[0].ID)
	})
}

package apiv1

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"hr-timesheet-backend/config"
	timesheethandler "hr-timesheet-backend/lib/timesheet"
	usershandler "hr-timesheet-backend/lib/users"
	authutils "hr-timesheet-backend/lib/utils/auth-utils"
	"hr-timesheet-backend/models"
	apimodels "hr-timesheet-backend/models/api"
	timesheetapimodels "hr-timesheet-backend/models/api/timesheet"
)

type fakeTimesheetHandler struct {
	timesheethandler.Provider
	lastActor models.Actor
}

func (f *fakeTimesheetHandler) ViewByToken(token string) (*timesheetapimodels.TimesheetView, error) {
	switch token {
	case "pending":
		return &timesheetapimodels.TimesheetView{ID: "ts-1", Status: models.TimesheetStatusSubmitted}, nil
	case "done":
		return nil, models.NewAlreadyProcessedError(models.TimesheetStatusApproved)
	}
	return nil, models.NewNotFoundError("ссылка не найдена")
}

func (f *fakeTimesheetHandler) ApproveByToken(ctx context.Context, token string, data timesheetapimodels.ApproveRequest) (*timesheetapimodels.TimesheetView, error) {
	if err := data.Validate(true); err != nil {
		return nil, err
	}
	return &timesheetapimodels.TimesheetView{ID: "ts-1", Status: models.TimesheetStatusApproved}, nil
}

func (f *fakeTimesheetHandler) List(actor models.Actor, filter timesheetapimodels.TimesheetFilter) ([]timesheetapimodels.TimesheetShortView, int64, error) {
	f.lastActor = actor
	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}
	return []timesheetapimodels.TimesheetShortView{}, 0, nil
}

func (f *fakeTimesheetHandler) Get(actor models.Actor, id string) (*timesheetapimodels.TimesheetView, error) {
	return nil, errors.New("ошибка соединения с базой данных")
}

type fakeUsersHandler struct {
	usershandler.Provider
	inactive map[string]bool
}

func (f *fakeUsersHandler) IsActive(userID string) (bool, error) {
	if userID == "broken-db" {
		return false, errors.New("ошибка соединения с базой данных")
	}
	return !f.inactive[userID], nil
}

func newTestApp(t *testing.T) (*fiber.App, *fakeTimesheetHandler) {
	config.Conf = &config.Configuration{}
	config.Conf.Auth.JWTSecret = "test-secret"
	config.Conf.Auth.JWTExpireInSec = 3600
	config.Conf.Auth.CookieName = "timesheet_session"
	fake := &fakeTimesheetHandler{}
	timesheethandler.Instance = fake
	usershandler.Instance = &fakeUsersHandler{inactive: map[string]bool{"contractor-blocked": true}}
	app := fiber.New()
	InitAuthApiRouters(app)
	InitTimesheetApiRouters(app)
	InitSupervisorApprovalApiRouters(app)
	return app, fake
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (int, apimodels.Response) {
	resp, err := app.Test(req)
	require.Nil(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.Nil(t, err)
	result := apimodels.Response{}
	if len(body) != 0 {
		require.Nil(t, json.Unmarshal(body, &result))
	}
	return resp.StatusCode, result
}

func TestSupervisorApprovalApi(t *testing.T) {
	app, _ := newTestApp(t)

	t.Run(`pending timesheet`, func(t *testing.T) {
		code, resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/supervisor/approval/pending", nil))
		require.Equal(t, fiber.StatusOK, code)
		require.Equal(t, "success", resp.Status)
	})

	t.Run(`already processed answers conflict with status`, func(t *testing.T) {
		code, resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/supervisor/approval/done", nil))
		require.Equal(t, fiber.StatusConflict, code)
		require.Equal(t, "fail", resp.Status)
		data := resp.Data.(map[string]interface{})
		require.Equal(t, "approved", data["status"])
	})

	t.Run(`unknown token`, func(t *testing.T) {
		code, _ := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/supervisor/approval/unknown", nil))
		require.Equal(t, fiber.StatusNotFound, code)
	})

	t.Run(`approve without signature`, func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/supervisor/approval/pending/approve", strings.NewReader(`{"comment":"ok"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		code, resp := doRequest(t, app, req)
		require.Equal(t, fiber.StatusBadRequest, code)
		require.NotEmpty(t, resp.Message)
	})
}

func TestTimesheetApiAuth(t *testing.T) {
	app, fake := newTestApp(t)

	t.Run(`no session`, func(t *testing.T) {
		code, _ := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/timesheets", nil))
		require.Equal(t, fiber.StatusUnauthorized, code)
	})

	token, _, err := authutils.GetToken("supervisor-1", "Анна", models.UserRoleSupervisor)
	require.Nil(t, err)

	t.Run(`header token`, func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/timesheets", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		code, resp := doRequest(t, app, req)
		require.Equal(t, fiber.StatusOK, code)
		require.Equal(t, "success", resp.Status)
		require.Equal(t, "supervisor-1", fake.lastActor.UserID)
		require.Equal(t, models.UserRoleSupervisor, fake.lastActor.Role)
	})

	t.Run(`cookie token`, func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/timesheets?status=unknown", nil)
		req.AddCookie(&http.Cookie{Name: "timesheet_session", Value: token})
		code, _ := doRequest(t, app, req)
		require.Equal(t, fiber.StatusBadRequest, code)
	})

	t.Run(`supervisor cannot submit`, func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/timesheets/submit", strings.NewReader(`{}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		code, _ := doRequest(t, app, req)
		require.Equal(t, fiber.StatusForbidden, code)
	})

	t.Run(`internal error is hidden`, func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/timesheets/ts-1", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		code, resp := doRequest(t, app, req)
		require.Equal(t, fiber.StatusInternalServerError, code)
		require.NotContains(t, resp.Message, "базой данных")
	})

	t.Run(`deactivated user loses access with a valid token`, func(t *testing.T) {
		blocked, _, err := authutils.GetToken("contractor-blocked", "Петр", models.UserRoleContractor)
		require.Nil(t, err)
		fake.lastActor = models.Actor{}
		req := httptest.NewRequest(http.MethodGet, "/timesheets", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+blocked)
		code, resp := doRequest(t, app, req)
		require.Equal(t, fiber.StatusUnauthorized, code)
		require.Equal(t, "пользователь заблокирован", resp.Message)
		require.Empty(t, fake.lastActor.UserID)
	})

	t.Run(`user check failure`, func(t *testing.T) {
		broken, _, err := authutils.GetToken("broken-db", "Петр", models.UserRoleContractor)
		require.Nil(t, err)
		req := httptest.NewRequest(http.MethodGet, "/timesheets", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+broken)
		code, resp := doRequest(t, app, req)
		require.Equal(t, fiber.StatusInternalServerError, code)
		require.NotContains(t, resp.Message, "базой данных")
	})

	t.Run(`logout clears cookie`, func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/timesheet/logout", nil))
		require.Nil(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		cookies := resp.Cookies()
		require.Len(t, cookies, 1)
		require.Equal(t, "timesheet_session", cookies[0].Name)
		require.Empty(t, cookies[0].Value)
	})
}

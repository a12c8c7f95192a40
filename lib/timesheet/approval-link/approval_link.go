package approvallink

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	timesheetstore "hr-timesheet-backend/lib/timesheet/store"
	"hr-timesheet-backend/models"
	dbmodels "hr-timesheet-backend/models/db"
)

// TokenBytes энтропия токена ссылки согласования
const TokenBytes = 32

type Provider interface {
	// Mint новый токен ссылки согласования
	Mint() (string, error)
	// Resolve табель, доступный для согласования по токену
	Resolve(token string) (*dbmodels.Timesheet, error)
	// View табель по токену в любом статусе, только для просмотра.
	// Токен, замененный повторной отправкой, отвечает AlreadyProcessedError с текущим статусом
	View(token string) (*dbmodels.Timesheet, error)
	BuildLink(token string) string
}

func NewInstance(store timesheetstore.Provider, publicURL string) Provider {
	return impl{
		store:     store,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

type impl struct {
	store     timesheetstore.Provider
	publicURL string
}

func (i impl) Mint() (string, error) {
	return MintToken()
}

func (i impl) Resolve(token string) (*dbmodels.Timesheet, error) {
	rec, err := i.View(token)
	if err != nil {
		return nil, err
	}
	if rec.Status != models.TimesheetStatusSubmitted {
		return nil, models.NewAlreadyProcessedError(rec.Status)
	}
	return rec, nil
}

func (i impl) View(token string) (*dbmodels.Timesheet, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, models.NewNotFoundError("ссылка согласования недействительна")
	}
	rec, err := i.store.GetByToken(token)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка поиска табеля по токену")
	}
	if rec != nil {
		return rec, nil
	}
	rec, err = i.store.GetBySupersededToken(token)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка поиска табеля по прежнему токену")
	}
	if rec == nil {
		return nil, models.NewNotFoundError("ссылка согласования недействительна")
	}
	return nil, models.NewAlreadyProcessedError(rec.Status)
}

func (i impl) BuildLink(token string) string {
	return fmt.Sprintf("%s/supervisor/approval/%s", i.publicURL, token)
}

func MintToken() (string, error) {
	buf := make([]byte, TokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "ошибка генерации токена согласования")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

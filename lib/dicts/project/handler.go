package projectprovider

import (
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"hr-timesheet-backend/db"
	projectstore "hr-timesheet-backend/lib/dicts/project/store"
	initchecker "hr-timesheet-backend/lib/utils/init-checker"
	"hr-timesheet-backend/models"
	dictapimodels "hr-timesheet-backend/models/api/dict"
	dbmodels "hr-timesheet-backend/models/db"
)

type Provider interface {
	Create(request dictapimodels.ProjectData) (id string, err error)
	Update(id string, request dictapimodels.ProjectData) error
	Get(id string) (item dictapimodels.ProjectView, err error)
	Find(request dictapimodels.ProjectFind) (list []dictapimodels.ProjectView, err error)
	Delete(id string) error
}

var Instance Provider

func NewHandler() {
	instance := impl{
		store: projectstore.NewInstance(db.DB),
	}
	initchecker.CheckInit(
		"store", instance.store,
	)
	Instance = instance
}

type impl struct {
	store projectstore.Provider
}

func (i impl) Create(request dictapimodels.ProjectData) (id string, err error) {
	if err = request.Validate(); err != nil {
		return "", err
	}
	rec := dbmodels.Project{
		Name:        strings.TrimSpace(request.Name),
		ClientName:  strings.TrimSpace(request.ClientName),
		Description: request.Description,
		IsActive:    true,
	}
	if request.IsActive != nil {
		rec.IsActive = *request.IsActive
	}
	id, err = i.store.Create(rec)
	if err != nil {
		return "", err
	}
	log.
		WithField("project_name", rec.Name).
		WithField("rec_id", id).
		Info("создан проект")
	return id, nil
}

func (i impl) Update(id string, request dictapimodels.ProjectData) error {
	logger := log.WithField("rec_id", id)
	if err := request.Validate(); err != nil {
		return err
	}
	if _, err := i.get(id); err != nil {
		return err
	}
	updMap := map[string]interface{}{
		"name":        strings.TrimSpace(request.Name),
		"client_name": strings.TrimSpace(request.ClientName),
		"description": request.Description,
	}
	if request.IsActive != nil {
		updMap["is_active"] = *request.IsActive
	}
	err := i.store.Update(id, updMap)
	if err != nil {
		return err
	}
	logger.Info("обновлен проект")
	return nil
}

func (i impl) Get(id string) (item dictapimodels.ProjectView, err error) {
	rec, err := i.get(id)
	if err != nil {
		return dictapimodels.ProjectView{}, err
	}
	return dictapimodels.ProjectConvert(*rec), nil
}

func (i impl) Find(request dictapimodels.ProjectFind) (list []dictapimodels.ProjectView, err error) {
	recList, err := i.store.Find(strings.TrimSpace(request.Name), request.OnlyActive)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка поиска проектов")
	}
	list = make([]dictapimodels.ProjectView, 0, len(recList))
	for _, rec := range recList {
		list = append(list, dictapimodels.ProjectConvert(rec))
	}
	return list, nil
}

// Delete табели с удаленным проектом остаются, ссылка обнуляется
func (i impl) Delete(id string) error {
	if _, err := i.get(id); err != nil {
		return err
	}
	err := i.store.Delete(id)
	if err != nil {
		return errors.Wrap(err, "ошибка удаления проекта")
	}
	log.WithField("rec_id", id).Info("удален проект")
	return nil
}

func (i impl) get(id string) (*dbmodels.Project, error) {
	rec, err := i.store.GetByID(id)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения проекта")
	}
	if rec == nil {
		return nil, models.NewNotFoundError("проект не найден")
	}
	return rec, nil
}

package timesheethandler

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"hr-timesheet-backend/config"
	"hr-timesheet-backend/db"
	projectstore "hr-timesheet-backend/lib/dicts/project/store"
	pdfexport "hr-timesheet-backend/lib/export/pdf"
	xlsexport "hr-timesheet-backend/lib/export/xls"
	filestorage "hr-timesheet-backend/lib/file-storage"
	"hr-timesheet-backend/lib/signature"
	"hr-timesheet-backend/lib/smtp"
	approvallink "hr-timesheet-backend/lib/timesheet/approval-link"
	entrystore "hr-timesheet-backend/lib/timesheet/entry-store"
	"hr-timesheet-backend/lib/timesheet/notify"
	timesheetstore "hr-timesheet-backend/lib/timesheet/store"
	usersstore "hr-timesheet-backend/lib/users/store"
	initchecker "hr-timesheet-backend/lib/utils/init-checker"
	"hr-timesheet-backend/models"
	timesheetapimodels "hr-timesheet-backend/models/api/timesheet"
	dbmodels "hr-timesheet-backend/models/db"
)

// SourceUpload скачивание загруженного подрядчиком подписанного PDF вместо сформированного
const SourceUpload = "upload"

type Provider interface {
	SaveDraft(actor models.Actor, data timesheetapimodels.TimesheetData) (*timesheetapimodels.TimesheetView, error)
	Submit(ctx context.Context, actor models.Actor, data timesheetapimodels.TimesheetData, signedPdf []byte) (*timesheetapimodels.TimesheetView, error)
	Update(actor models.Actor, id string, data timesheetapimodels.TimesheetData) (*timesheetapimodels.TimesheetView, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
	Get(actor models.Actor, id string) (*timesheetapimodels.TimesheetView, error)
	List(actor models.Actor, filter timesheetapimodels.TimesheetFilter) (list []timesheetapimodels.TimesheetShortView, rowCount int64, err error)
	ApproveByID(ctx context.Context, actor models.Actor, id string, data timesheetapimodels.ApproveRequest) (*timesheetapimodels.TimesheetView, error)
	RejectByID(ctx context.Context, actor models.Actor, id string, data timesheetapimodels.RejectRequest) (*timesheetapimodels.TimesheetView, error)
	ViewByToken(token string) (*timesheetapimodels.TimesheetView, error)
	ApproveByToken(ctx context.Context, token string, data timesheetapimodels.ApproveRequest) (*timesheetapimodels.TimesheetView, error)
	RejectByToken(ctx context.Context, token string, data timesheetapimodels.RejectRequest) (*timesheetapimodels.TimesheetView, error)
	Download(ctx context.Context, actor models.Actor, id, source string) (body []byte, fileName string, err error)
	Export(actor models.Actor, filter timesheetapimodels.TimesheetFilter) (*bytes.Buffer, error)
}

var Instance Provider

func NewHandler() {
	timesheetStore := timesheetstore.NewInstance(db.DB)
	instance := impl{
		timesheetStore: timesheetStore,
		projectStore:   projectstore.NewInstance(db.DB),
		usersStore:     usersstore.NewInstance(db.DB),
		withTx: func(fn func(s stores) error) error {
			return db.DB.Transaction(func(tx *gorm.DB) error {
				return fn(newStores(tx))
			})
		},
		approvalLink:     approvallink.NewInstance(timesheetStore, config.Conf.App.PublicURL),
		notify:           notify.NewInstance(smtp.Instance, config.Conf.Timesheet.CompanyName),
		fileStorage:      filestorage.Instance,
		exporter:         xlsexport.Instance,
		maxSignedPdfSize: config.Conf.Timesheet.MaxSignedPdfSize,
		maxSignatureSize: config.Conf.Timesheet.MaxSignatureSize,
		siteName:         config.Conf.Timesheet.CompanyName,
		fontDir:          config.Conf.Timesheet.FontDir,
		now:              time.Now,
	}
	initchecker.CheckInit(
		"fileStorage", instance.fileStorage,
		"exporter", instance.exporter,
	)
	Instance = instance
}

// stores хранилища, работающие в одной транзакции
type stores struct {
	timesheet timesheetstore.Provider
	entry     entrystore.Provider
}

func newStores(tx *gorm.DB) stores {
	return stores{
		timesheet: timesheetstore.NewInstance(tx),
		entry:     entrystore.NewInstance(tx),
	}
}

type impl struct {
	timesheetStore   timesheetstore.Provider
	projectStore     projectstore.Provider
	usersStore       usersstore.Provider
	withTx           func(fn func(s stores) error) error
	approvalLink     approvallink.Provider
	notify           notify.Provider
	fileStorage      filestorage.Provider
	exporter         xlsexport.Provider
	maxSignedPdfSize int64
	maxSignatureSize int
	siteName         string
	fontDir          string
	now              func() time.Time
}

func (i impl) getLogger(timesheetID, userID string) *log.Entry {
	logger := log.WithField("timesheet_id", timesheetID)
	if userID != "" {
		logger = logger.WithField("user_id", userID)
	}
	return logger
}

func (i impl) SaveDraft(actor models.Actor, data timesheetapimodels.TimesheetData) (*timesheetapimodels.TimesheetView, error) {
	if !actor.Role.CanSubmit() {
		return nil, models.NewAuthorizationError("недостаточно прав для создания табеля")
	}
	if err := data.ValidateDraft(); err != nil {
		return nil, err
	}
	if data.ID != "" {
		return i.Update(actor, data.ID, data)
	}
	rec, entries, err := i.prepare(data)
	if err != nil {
		return nil, err
	}
	rec.ID = uuid.NewString()
	rec.ContractorID = actor.UserID
	rec.Status = models.TimesheetStatusDraft
	if rec.ContractorSignature != "" {
		now := i.now()
		rec.ContractorSignedAt = &now
	}
	err = i.withTx(func(s stores) error {
		if _, err := s.timesheet.Create(rec); err != nil {
			return errors.Wrap(err, "ошибка создания черновика табеля")
		}
		return s.entry.ReplaceForTimesheet(rec.ID, entries)
	})
	if err != nil {
		return nil, err
	}
	i.getLogger(rec.ID, actor.UserID).Info("создан черновик табеля")
	return i.Get(actor, rec.ID)
}

func (i impl) Update(actor models.Actor, id string, data timesheetapimodels.TimesheetData) (*timesheetapimodels.TimesheetView, error) {
	current, err := i.getForModify(actor, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.IsMutable() {
		return nil, models.NewImmutableStateError(current.Status)
	}
	awaitingApproval := current.Status == models.TimesheetStatusSubmitted
	if awaitingApproval {
		// табель уже у руководителя и должен оставаться пригодным к согласованию.
		// Пустая подпись в форме не затирает сохраненную
		signed := current.ContractorSignature != "" || current.SignedPdfPath != ""
		err = data.ValidateSubmit(signed)
	} else {
		err = data.ValidateDraft()
	}
	if err != nil {
		return nil, err
	}
	rec, entries, err := i.prepare(data)
	if err != nil {
		return nil, err
	}
	if awaitingApproval && rec.TotalDays == 0 {
		return nil, models.NewValidationError("табель не содержит ни одного рабочего дня")
	}
	updMap := headerUpdMap(rec)
	if rec.ContractorSignature == "" {
		delete(updMap, "contractor_signature")
	} else if rec.ContractorSignature != current.ContractorSignature {
		updMap["contractor_signed_at"] = i.now()
	}
	err = i.withTx(func(s stores) error {
		// проверка формы зависела от статуса, поэтому он не должен измениться до записи
		changed, err := s.timesheet.UpdateWithStatus(id, []models.TimesheetStatus{current.Status}, updMap)
		if err != nil {
			return errors.Wrap(err, "ошибка обновления табеля")
		}
		if !changed {
			return statusChangedError(s, id)
		}
		return s.entry.ReplaceForTimesheet(id, entries)
	})
	if err != nil {
		return nil, err
	}
	i.getLogger(id, actor.UserID).Info("табель изменен")
	return i.Get(actor, id)
}

// statusChangedError статус табеля изменился параллельно с редактированием
func statusChangedError(s stores, id string) error {
	rec, err := s.timesheet.GetByID(id)
	if err != nil {
		return errors.Wrap(err, "ошибка получения табеля")
	}
	if rec == nil {
		return models.NewNotFoundError("табель не найден")
	}
	if !rec.Status.IsMutable() {
		return models.NewImmutableStateError(rec.Status)
	}
	return models.NewAlreadyProcessedError(rec.Status)
}

func (i impl) Delete(ctx context.Context, actor models.Actor, id string) error {
	rec, err := i.getForModify(actor, id)
	if err != nil {
		return err
	}
	if !rec.Status.IsMutable() {
		return models.NewImmutableStateError(rec.Status)
	}
	err = i.withTx(func(s stores) error {
		if err := s.entry.DeleteByTimesheet(id); err != nil {
			return errors.Wrap(err, "ошибка удаления строк табеля")
		}
		return s.timesheet.Delete(id)
	})
	if err != nil {
		return err
	}
	logger := i.getLogger(id, actor.UserID)
	i.deleteSignedPdf(ctx, logger, rec.SignedPdfPath)
	logger.Info("табель удален")
	return nil
}

func (i impl) Get(actor models.Actor, id string) (*timesheetapimodels.TimesheetView, error) {
	rec, err := i.getForRead(actor, id)
	if err != nil {
		return nil, err
	}
	result := timesheetapimodels.TimesheetConvert(*rec)
	return &result, nil
}

func (i impl) List(actor models.Actor, filter timesheetapimodels.TimesheetFilter) (list []timesheetapimodels.TimesheetShortView, rowCount int64, err error) {
	list = []timesheetapimodels.TimesheetShortView{}
	if err = filter.Validate(); err != nil {
		return nil, 0, err
	}
	storeFilter, ok, err := i.scopeFilter(actor, filter)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return list, 0, nil
	}
	rowCount, err = i.timesheetStore.ListCount(storeFilter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "ошибка подсчета табелей")
	}
	if rowCount == 0 {
		return list, 0, nil
	}
	storeFilter.Offset, storeFilter.Limit = filter.GetOffset()
	recList, err := i.timesheetStore.List(storeFilter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "ошибка получения списка табелей")
	}
	for _, rec := range recList {
		list = append(list, timesheetapimodels.TimesheetShortConvert(rec))
	}
	return list, rowCount, nil
}

func (i impl) Download(ctx context.Context, actor models.Actor, id, source string) (body []byte, fileName string, err error) {
	rec, err := i.getForRead(actor, id)
	if err != nil {
		return nil, "", err
	}
	fileName = fmt.Sprintf("timesheet_%s_%s.pdf", rec.PeriodStart.Format(models.DateLayout), rec.ID)
	if source == SourceUpload {
		if rec.SignedPdfPath == "" || i.fileStorage == nil {
			return nil, "", models.NewNotFoundError("подписанный PDF не загружен")
		}
		body, err = i.fileStorage.GetFile(ctx, rec.SignedPdfPath)
		if err != nil {
			return nil, "", err
		}
		return body, fileName, nil
	}
	body, err = pdfexport.RenderTimesheet(pdfexport.TimesheetPdfData{
		Timesheet:   *rec,
		SiteName:    i.siteName,
		FontDir:     i.fontDir,
		GeneratedAt: i.now(),
	})
	if err != nil {
		return nil, "", errors.Wrap(err, "ошибка формирования PDF")
	}
	return body, fileName, nil
}

func (i impl) Export(actor models.Actor, filter timesheetapimodels.TimesheetFilter) (*bytes.Buffer, error) {
	if !actor.Role.CanReadAny() {
		return nil, models.NewAuthorizationError("недостаточно прав для выгрузки табелей")
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	storeFilter, ok, err := i.scopeFilter(actor, filter)
	if err != nil {
		return nil, err
	}
	list := []dbmodels.Timesheet{}
	if ok {
		list, err = i.timesheetStore.List(storeFilter)
		if err != nil {
			return nil, errors.Wrap(err, "ошибка получения списка табелей")
		}
	}
	return i.exporter.ExportTimesheetList(list)
}

// scopeFilter ограничение списка по роли. ok=false: роли ничего не доступно
func (i impl) scopeFilter(actor models.Actor, filter timesheetapimodels.TimesheetFilter) (result timesheetstore.Filter, ok bool, err error) {
	result.Status = filter.Status
	if filter.PeriodFrom != "" {
		periodFrom, _ := time.Parse(models.DateLayout, filter.PeriodFrom)
		result.PeriodFrom = &periodFrom
	}
	if filter.PeriodTo != "" {
		periodTo, _ := time.Parse(models.DateLayout, filter.PeriodTo)
		result.PeriodTo = &periodTo
	}
	switch actor.Role.ListScope() {
	case models.ScopeOwn:
		result.ContractorID = actor.UserID
	case models.ScopeSupervisor:
		result.ContractorID = filter.ContractorID
		result.SupervisorQueue = true
		user, err := i.usersStore.GetByID(actor.UserID)
		if err != nil {
			return result, false, errors.Wrap(err, "ошибка получения пользователя")
		}
		if user != nil {
			result.SupervisorEmail = user.Email
		}
	case models.ScopeAll:
		result.ContractorID = filter.ContractorID
	case models.ScopeNone:
		return result, false, nil
	}
	return result, true, nil
}

func (i impl) getForRead(actor models.Actor, id string) (*dbmodels.Timesheet, error) {
	rec, err := i.timesheetStore.GetByID(id)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения табеля")
	}
	if rec == nil || !canRead(actor, *rec) {
		return nil, models.NewNotFoundError("табель не найден")
	}
	return rec, nil
}

func (i impl) getForModify(actor models.Actor, id string) (*dbmodels.Timesheet, error) {
	rec, err := i.getForRead(actor, id)
	if err != nil {
		return nil, err
	}
	if !canModify(actor, *rec) {
		return nil, models.NewAuthorizationError("изменять табель может только его владелец")
	}
	return rec, nil
}

func canRead(actor models.Actor, rec dbmodels.Timesheet) bool {
	return rec.IsOwner(actor.UserID) || actor.Role.CanReadAny()
}

func canModify(actor models.Actor, rec dbmodels.Timesheet) bool {
	return rec.IsOwner(actor.UserID) || actor.Role.CanModifyAny()
}

// prepare заголовок и строки табеля из формы, итоги пересчитываются по строкам
func (i impl) prepare(data timesheetapimodels.TimesheetData) (rec dbmodels.Timesheet, entries []dbmodels.TimesheetEntry, err error) {
	periodStart, err := data.GetPeriodStart()
	if err != nil {
		return rec, nil, err
	}
	entries, err = buildEntries(data.Entries, periodStart, data.PeriodType)
	if err != nil {
		return rec, nil, err
	}
	if data.ContractorSignature != "" {
		if err = signature.Validate(data.ContractorSignature, i.maxSignatureSize); err != nil {
			return rec, nil, err
		}
	}
	projectID, err := i.checkProject(data.ProjectID)
	if err != nil {
		return rec, nil, err
	}
	sum := calcTotals(entries, data.RateType)
	rec = dbmodels.Timesheet{
		ProjectID:           projectID,
		PeriodStart:         periodStart,
		PeriodType:          data.PeriodType,
		RateType:            data.RateType,
		TotalHours:          sum.Hours,
		TotalDays:           sum.Days,
		Currency:            strings.ToUpper(strings.TrimSpace(data.Currency)),
		WorkDescription:     data.WorkDescription,
		Location:            data.Location,
		CompanyName:         strings.TrimSpace(data.CompanyName),
		Department:          strings.TrimSpace(data.Department),
		JobTitle:            strings.TrimSpace(data.JobTitle),
		SupervisorName:      strings.TrimSpace(data.SupervisorName),
		SupervisorEmail:     strings.TrimSpace(data.SupervisorEmail),
		AdditionalEmails:    strings.Join(dbmodels.SplitEmails(data.AdditionalEmails), ","),
		ContractorSignature: data.ContractorSignature,
		EntriesSnapshot:     toSnapshot(entries),
	}
	return rec, entries, nil
}

func (i impl) checkProject(projectID *string) (*string, error) {
	if projectID == nil || *projectID == "" {
		return nil, nil
	}
	project, err := i.projectStore.GetByID(*projectID)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения проекта")
	}
	if project == nil {
		return nil, models.NewValidationError("проект не найден")
	}
	return projectID, nil
}

func headerUpdMap(rec dbmodels.Timesheet) map[string]interface{} {
	return map[string]interface{}{
		"project_id":           rec.ProjectID,
		"period_start":         rec.PeriodStart,
		"period_type":          rec.PeriodType,
		"rate_type":            rec.RateType,
		"total_hours":          rec.TotalHours,
		"total_days":           rec.TotalDays,
		"currency":             rec.Currency,
		"work_description":     rec.WorkDescription,
		"location":             rec.Location,
		"company_name":         rec.CompanyName,
		"department":           rec.Department,
		"job_title":            rec.JobTitle,
		"supervisor_name":      rec.SupervisorName,
		"supervisor_email":     rec.SupervisorEmail,
		"additional_emails":    rec.AdditionalEmails,
		"contractor_signature": rec.ContractorSignature,
		"entries_snapshot":     rec.EntriesSnapshot,
	}
}

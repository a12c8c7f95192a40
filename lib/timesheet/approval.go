package timesheethandler

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	filestorage "hr-timesheet-backend/lib/file-storage"
	"hr-timesheet-backend/lib/signature"
	"hr-timesheet-backend/models"
	timesheetapimodels "hr-timesheet-backend/models/api/timesheet"
	dbmodels "hr-timesheet-backend/models/db"
)

// статусы, из которых допустима отправка на согласование.
// Табель на согласовании можно отправить повторно, ссылка при этом перевыпускается
var submittableStatuses = []models.TimesheetStatus{
	models.TimesheetStatusDraft,
	models.TimesheetStatusSubmitted,
	models.TimesheetStatusRejected,
}

func (i impl) Submit(ctx context.Context, actor models.Actor, data timesheetapimodels.TimesheetData, signedPdf []byte) (*timesheetapimodels.TimesheetView, error) {
	if !actor.Role.CanSubmit() {
		return nil, models.NewAuthorizationError("недостаточно прав для отправки табеля")
	}
	hasSignedPdf := len(signedPdf) != 0
	if hasSignedPdf {
		if err := filestorage.CheckPdf(signedPdf, i.maxSignedPdfSize); err != nil {
			return nil, err
		}
	}
	if err := data.ValidateSubmit(hasSignedPdf); err != nil {
		return nil, err
	}
	rec, entries, err := i.prepare(data)
	if err != nil {
		return nil, err
	}
	if rec.TotalDays == 0 {
		return nil, models.NewValidationError("табель не содержит ни одного рабочего дня")
	}

	var current *dbmodels.Timesheet
	if data.ID != "" {
		current, err = i.getForModify(actor, data.ID)
		if err != nil {
			return nil, err
		}
		if current.Status != models.TimesheetStatusSubmitted && !current.Status.CanTransit(models.TimesheetStatusSubmitted) {
			return nil, models.NewImmutableStateError(current.Status)
		}
		rec.ID = current.ID
		rec.ContractorID = current.ContractorID
		rec.SignedPdfPath = current.SignedPdfPath
	} else {
		rec.ID = uuid.NewString()
		rec.ContractorID = actor.UserID
	}
	logger := i.getLogger(rec.ID, actor.UserID)

	token, err := i.approvalLink.Mint()
	if err != nil {
		return nil, err
	}
	now := i.now()
	rec.Status = models.TimesheetStatusSubmitted
	rec.SubmittedAt = &now
	rec.ApprovalToken = &token
	if rec.ContractorSignature != "" {
		rec.ContractorSignedAt = &now
	}
	if hasSignedPdf {
		if i.fileStorage == nil {
			return nil, errors.New("хранилище файлов не настроено")
		}
		rec.SignedPdfPath, err = i.fileStorage.UploadSignedPdf(ctx, rec.ID, signedPdf)
		if err != nil {
			return nil, err
		}
	}

	err = i.withTx(func(s stores) error {
		if current == nil {
			if _, err := s.timesheet.Create(rec); err != nil {
				return errors.Wrap(err, "ошибка создания табеля")
			}
		} else {
			updMap := headerUpdMap(rec)
			updMap["status"] = rec.Status
			updMap["submitted_at"] = rec.SubmittedAt
			updMap["approval_token"] = rec.ApprovalToken
			updMap["contractor_signed_at"] = rec.ContractorSignedAt
			updMap["signed_pdf_path"] = rec.SignedPdfPath
			// решение по прошлой отправке больше не действует
			updMap["rejection_reason"] = ""
			updMap["rejected_at"] = nil
			updMap["approved_at"] = nil
			updMap["approver_id"] = nil
			updMap["approver_name"] = ""
			updMap["supervisor_signature"] = ""
			updMap["supervisor_signed_at"] = nil
			updMap["supervisor_comment"] = ""
			changed, err := s.timesheet.UpdateWithStatus(rec.ID, submittableStatuses, updMap)
			if err != nil {
				return errors.Wrap(err, "ошибка обновления табеля")
			}
			if !changed {
				return models.NewImmutableStateError(models.TimesheetStatusApproved)
			}
			if current.ApprovalToken != nil {
				// ссылка из прошлого письма должна отвечать "уже обработан", а не "не найден"
				if err := s.timesheet.SupersedeToken(rec.ID, *current.ApprovalToken, now); err != nil {
					return errors.Wrap(err, "ошибка сохранения прежнего токена согласования")
				}
			}
		}
		return s.entry.ReplaceForTimesheet(rec.ID, entries)
	})
	if err != nil {
		if hasSignedPdf {
			i.deleteSignedPdf(ctx, logger, rec.SignedPdfPath)
		}
		return nil, err
	}
	if hasSignedPdf && current != nil && current.SignedPdfPath != "" {
		i.deleteSignedPdf(ctx, logger, current.SignedPdfPath)
	}
	logger.
		WithField("total_hours", rec.TotalHours).
		WithField("total_days", rec.TotalDays).
		Info("табель отправлен на согласование")

	saved, err := i.reload(rec.ID)
	if err != nil {
		return nil, err
	}
	i.notify.TimesheetSubmitted(ctx, *saved, i.approvalLink.BuildLink(token))
	result := timesheetapimodels.TimesheetConvert(*saved)
	return &result, nil
}

func (i impl) ApproveByID(ctx context.Context, actor models.Actor, id string, data timesheetapimodels.ApproveRequest) (*timesheetapimodels.TimesheetView, error) {
	if !actor.Role.CanApprove() {
		return nil, models.NewAuthorizationError("недостаточно прав для согласования табеля")
	}
	if err := data.Validate(false); err != nil {
		return nil, err
	}
	rec, err := i.getForRead(actor, id)
	if err != nil {
		return nil, err
	}
	approverName := strings.TrimSpace(data.ApproverName)
	if approverName == "" {
		approverName = actor.Name
	}
	approverID := actor.UserID
	return i.approve(ctx, *rec, &approverID, approverName, data)
}

func (i impl) RejectByID(ctx context.Context, actor models.Actor, id string, data timesheetapimodels.RejectRequest) (*timesheetapimodels.TimesheetView, error) {
	if !actor.Role.CanApprove() {
		return nil, models.NewAuthorizationError("недостаточно прав для отклонения табеля")
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	rec, err := i.getForRead(actor, id)
	if err != nil {
		return nil, err
	}
	rejectorName := strings.TrimSpace(data.RejectorName)
	if rejectorName == "" {
		rejectorName = actor.Name
	}
	rejectorID := actor.UserID
	return i.reject(ctx, *rec, &rejectorID, rejectorName, data)
}

func (i impl) ViewByToken(token string) (*timesheetapimodels.TimesheetView, error) {
	rec, err := i.approvalLink.Resolve(token)
	if err != nil {
		return nil, err
	}
	result := timesheetapimodels.TimesheetConvert(*rec)
	return &result, nil
}

func (i impl) ApproveByToken(ctx context.Context, token string, data timesheetapimodels.ApproveRequest) (*timesheetapimodels.TimesheetView, error) {
	rec, err := i.approvalLink.Resolve(token)
	if err != nil {
		return nil, err
	}
	// по ссылке без входа в систему подпись обязательна
	if err = data.Validate(true); err != nil {
		return nil, err
	}
	approverName := strings.TrimSpace(data.ApproverName)
	if approverName == "" {
		approverName = rec.SupervisorName
	}
	return i.approve(ctx, *rec, nil, approverName, data)
}

func (i impl) RejectByToken(ctx context.Context, token string, data timesheetapimodels.RejectRequest) (*timesheetapimodels.TimesheetView, error) {
	rec, err := i.approvalLink.Resolve(token)
	if err != nil {
		return nil, err
	}
	if err = data.Validate(); err != nil {
		return nil, err
	}
	rejectorName := strings.TrimSpace(data.RejectorName)
	if rejectorName == "" {
		rejectorName = rec.SupervisorName
	}
	return i.reject(ctx, *rec, nil, rejectorName, data)
}

func (i impl) approve(ctx context.Context, rec dbmodels.Timesheet, approverID *string, approverName string, data timesheetapimodels.ApproveRequest) (*timesheetapimodels.TimesheetView, error) {
	if rec.Status != models.TimesheetStatusSubmitted {
		return nil, models.NewAlreadyProcessedError(rec.Status)
	}
	if data.SupervisorSignature != "" {
		if err := signature.Validate(data.SupervisorSignature, i.maxSignatureSize); err != nil {
			return nil, err
		}
	}
	now := i.now()
	updMap := map[string]interface{}{
		"status":             models.TimesheetStatusApproved,
		"approved_at":        now,
		"approver_id":        approverID,
		"approver_name":      approverName,
		"supervisor_comment": strings.TrimSpace(data.Comment),
	}
	if data.SupervisorSignature != "" {
		updMap["supervisor_signature"] = data.SupervisorSignature
		updMap["supervisor_signed_at"] = now
	}
	changed, err := i.timesheetStore.UpdateWithStatus(rec.ID, []models.TimesheetStatus{models.TimesheetStatusSubmitted}, updMap)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка согласования табеля")
	}
	if !changed {
		return nil, i.alreadyProcessed(rec.ID)
	}
	i.getLogger(rec.ID, stringValue(approverID)).
		WithField("approver_name", approverName).
		Info("табель согласован")

	saved, err := i.reload(rec.ID)
	if err != nil {
		return nil, err
	}
	i.notify.TimesheetApproved(ctx, *saved)
	result := timesheetapimodels.TimesheetConvert(*saved)
	return &result, nil
}

func (i impl) reject(ctx context.Context, rec dbmodels.Timesheet, rejectorID *string, rejectorName string, data timesheetapimodels.RejectRequest) (*timesheetapimodels.TimesheetView, error) {
	if rec.Status != models.TimesheetStatusSubmitted {
		return nil, models.NewAlreadyProcessedError(rec.Status)
	}
	updMap := map[string]interface{}{
		"status":             models.TimesheetStatusRejected,
		"rejected_at":        i.now(),
		"rejection_reason":   strings.TrimSpace(data.Reason),
		"approver_id":        rejectorID,
		"approver_name":      rejectorName,
		"supervisor_comment": strings.TrimSpace(data.Comment),
	}
	changed, err := i.timesheetStore.UpdateWithStatus(rec.ID, []models.TimesheetStatus{models.TimesheetStatusSubmitted}, updMap)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка отклонения табеля")
	}
	if !changed {
		return nil, i.alreadyProcessed(rec.ID)
	}
	i.getLogger(rec.ID, stringValue(rejectorID)).
		WithField("rejector_name", rejectorName).
		Info("табель отклонен")

	saved, err := i.reload(rec.ID)
	if err != nil {
		return nil, err
	}
	i.notify.TimesheetRejected(ctx, *saved)
	result := timesheetapimodels.TimesheetConvert(*saved)
	return &result, nil
}

// deleteSignedPdf удаление файла без прерывания запроса
func (i impl) deleteSignedPdf(ctx context.Context, logger *log.Entry, key string) {
	if key == "" || i.fileStorage == nil {
		return
	}
	if err := i.fileStorage.DeleteFile(ctx, key); err != nil {
		logger.WithError(err).WithField("key", key).Warn("не удалось удалить подписанный PDF")
	}
}

// alreadyProcessed ошибка для проигравшего в гонке согласования
func (i impl) alreadyProcessed(id string) error {
	rec, err := i.timesheetStore.GetByID(id)
	if err != nil {
		return errors.Wrap(err, "ошибка получения табеля")
	}
	if rec == nil {
		return models.NewNotFoundError("табель не найден")
	}
	return models.NewAlreadyProcessedError(rec.Status)
}

func (i impl) reload(id string) (*dbmodels.Timesheet, error) {
	rec, err := i.timesheetStore.GetByID(id)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения табеля")
	}
	if rec == nil {
		return nil, errors.Errorf("табель %v не найден после сохранения", id)
	}
	return rec, nil
}

func stringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

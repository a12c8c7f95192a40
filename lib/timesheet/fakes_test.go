package timesheethandler

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	projectstore "hr-timesheet-backend/lib/dicts/project/store"
	xlsexport "hr-timesheet-backend/lib/export/xls"
	filestorage "hr-timesheet-backend/lib/file-storage"
	approvallink "hr-timesheet-backend/lib/timesheet/approval-link"
	timesheetstore "hr-timesheet-backend/lib/timesheet/store"
	usersstore "hr-timesheet-backend/lib/users/store"
	"hr-timesheet-backend/models"
	dbmodels "hr-timesheet-backend/models/db"
)

// fakeDB хранилище табелей и строк в памяти
type fakeDB struct {
	mu      sync.Mutex
	recs    map[string]dbmodels.Timesheet
	entries map[string][]dbmodels.TimesheetEntry
	users   map[string]dbmodels.TimesheetUser
	// замененный токен -> ИД табеля
	superseded map[string]string
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		recs:       map[string]dbmodels.Timesheet{},
		entries:    map[string][]dbmodels.TimesheetEntry{},
		users:      map[string]dbmodels.TimesheetUser{},
		superseded: map[string]string{},
	}
}

func (f *fakeDB) Create(rec dbmodels.Timesheet) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	rec.Entries = nil
	f.recs[rec.ID] = rec
	return rec.ID, nil
}

func (f *fakeDB) GetByID(id string) (*dbmodels.Timesheet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.recs[id]
	if !ok {
		return nil, nil
	}
	return f.withRelations(rec), nil
}

func (f *fakeDB) GetByToken(token string) (*dbmodels.Timesheet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.recs {
		if rec.ApprovalToken != nil && *rec.ApprovalToken == token {
			return f.withRelations(rec), nil
		}
	}
	return nil, nil
}

func (f *fakeDB) SupersedeToken(timesheetID, token string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.superseded[token] = timesheetID
	return nil
}

func (f *fakeDB) GetBySupersededToken(token string) (*dbmodels.Timesheet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.recs[f.superseded[token]]
	if !ok {
		return nil, nil
	}
	return f.withRelations(rec), nil
}

func (f *fakeDB) Update(id string, updMap map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.recs[id]
	if !ok {
		return nil
	}
	applyUpdMap(&rec, updMap)
	f.recs[id] = rec
	return nil
}

func (f *fakeDB) UpdateWithStatus(id string, expected []models.TimesheetStatus, updMap map[string]interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.recs[id]
	if !ok {
		return false, nil
	}
	matched := false
	for _, status := range expected {
		if rec.Status == status {
			matched = true
		}
	}
	if !matched {
		return false, nil
	}
	applyUpdMap(&rec, updMap)
	f.recs[id] = rec
	return true, nil
}

func (f *fakeDB) Delete(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.recs, id)
	for token, timesheetID := range f.superseded {
		if timesheetID == id {
			delete(f.superseded, token)
		}
	}
	return nil
}

func (f *fakeDB) List(filter timesheetstore.Filter) ([]dbmodels.Timesheet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := []dbmodels.Timesheet{}
	for _, rec := range f.recs {
		if filter.ContractorID != "" && rec.ContractorID != filter.ContractorID {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		if filter.SupervisorQueue && rec.Status != models.TimesheetStatusSubmitted &&
			(filter.SupervisorEmail == "" || !strings.EqualFold(rec.SupervisorEmail, filter.SupervisorEmail)) {
			continue
		}
		if filter.PeriodFrom != nil && rec.PeriodStart.Before(*filter.PeriodFrom) {
			continue
		}
		if filter.PeriodTo != nil && rec.PeriodStart.After(*filter.PeriodTo) {
			continue
		}
		list = append(list, *f.withRelations(rec))
	}
	sort.Slice(list, func(a, b int) bool { return list[a].ID < list[b].ID })
	if filter.Limit > 0 {
		if filter.Offset >= len(list) {
			return []dbmodels.Timesheet{}, nil
		}
		end := filter.Offset + filter.Limit
		if end > len(list) {
			end = len(list)
		}
		list = list[filter.Offset:end]
	}
	return list, nil
}

func (f *fakeDB) ListCount(filter timesheetstore.Filter) (int64, error) {
	filter.Limit = 0
	list, err := f.List(filter)
	return int64(len(list)), err
}

func (f *fakeDB) ReplaceForTimesheet(timesheetID string, entries []dbmodels.TimesheetEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for idx := range entries {
		entries[idx].TimesheetID = timesheetID
	}
	f.entries[timesheetID] = append([]dbmodels.TimesheetEntry{}, entries...)
	return nil
}

func (f *fakeDB) ListByTimesheet(timesheetID string) ([]dbmodels.TimesheetEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dbmodels.TimesheetEntry{}, f.entries[timesheetID]...), nil
}

func (f *fakeDB) DeleteByTimesheet(timesheetID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, timesheetID)
	return nil
}

func (f *fakeDB) withRelations(rec dbmodels.Timesheet) *dbmodels.Timesheet {
	if user, ok := f.users[rec.ContractorID]; ok {
		rec.Contractor = &user
	}
	rec.Entries = append([]dbmodels.TimesheetEntry{}, f.entries[rec.ID]...)
	return &rec
}

func (f *fakeDB) addUser(user dbmodels.TimesheetUser) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
}

func (f *fakeDB) get(t *testing.T, id string) dbmodels.Timesheet {
	rec, err := f.GetByID(id)
	require.Nil(t, err)
	require.NotNil(t, rec)
	return *rec
}

func applyUpdMap(rec *dbmodels.Timesheet, updMap map[string]interface{}) {
	for key, value := range updMap {
		switch key {
		case "project_id":
			rec.ProjectID = stringPtr(value)
		case "period_start":
			rec.PeriodStart = value.(time.Time)
		case "period_type":
			rec.PeriodType = value.(models.PeriodType)
		case "rate_type":
			rec.RateType = value.(models.RateType)
		case "total_hours":
			rec.TotalHours = value.(float64)
		case "total_days":
			rec.TotalDays = value.(int)
		case "currency":
			rec.Currency = value.(string)
		case "work_description":
			rec.WorkDescription = value.(string)
		case "location":
			rec.Location = value.(string)
		case "company_name":
			rec.CompanyName = value.(string)
		case "department":
			rec.Department = value.(string)
		case "job_title":
			rec.JobTitle = value.(string)
		case "supervisor_name":
			rec.SupervisorName = value.(string)
		case "supervisor_email":
			rec.SupervisorEmail = value.(string)
		case "additional_emails":
			rec.AdditionalEmails = value.(string)
		case "contractor_signature":
			rec.ContractorSignature = value.(string)
		case "contractor_signed_at":
			rec.ContractorSignedAt = timePtr(value)
		case "entries_snapshot":
			rec.EntriesSnapshot = value.(dbmodels.EntriesSnapshot)
		case "status":
			rec.Status = value.(models.TimesheetStatus)
		case "submitted_at":
			rec.SubmittedAt = timePtr(value)
		case "approval_token":
			rec.ApprovalToken = stringPtr(value)
		case "signed_pdf_path":
			rec.SignedPdfPath = value.(string)
		case "rejection_reason":
			rec.RejectionReason = value.(string)
		case "rejected_at":
			rec.RejectedAt = timePtr(value)
		case "approved_at":
			rec.ApprovedAt = timePtr(value)
		case "approver_id":
			rec.ApproverID = stringPtr(value)
		case "approver_name":
			rec.ApproverName = value.(string)
		case "supervisor_signature":
			rec.SupervisorSignature = value.(string)
		case "supervisor_signed_at":
			rec.SupervisorSignedAt = timePtr(value)
		case "supervisor_comment":
			rec.SupervisorComment = value.(string)
		default:
			panic("unexpected column " + key)
		}
	}
}

func timePtr(value interface{}) *time.Time {
	switch v := value.(type) {
	case time.Time:
		return &v
	case *time.Time:
		return v
	}
	return nil
}

func stringPtr(value interface{}) *string {
	switch v := value.(type) {
	case string:
		return &v
	case *string:
		return v
	}
	return nil
}

type fakeUsersStore struct {
	usersstore.Provider
	db *fakeDB
}

func (s fakeUsersStore) GetByID(id string) (*dbmodels.TimesheetUser, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	user, ok := s.db.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

type fakeProjectStore struct {
	projectstore.Provider
	projects map[string]dbmodels.Project
}

func (s fakeProjectStore) GetByID(id string) (*dbmodels.Project, error) {
	rec, ok := s.projects[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

type sentNotification struct {
	Kind string
	ID   string
	Link string
}

type fakeNotify struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *fakeNotify) add(kind string, rec dbmodels.Timesheet, link string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{Kind: kind, ID: rec.ID, Link: link})
	return true
}

func (n *fakeNotify) TimesheetSubmitted(_ context.Context, rec dbmodels.Timesheet, link string) bool {
	return n.add("submitted", rec, link)
}

func (n *fakeNotify) TimesheetApproved(_ context.Context, rec dbmodels.Timesheet) bool {
	return n.add("approved", rec, "")
}

func (n *fakeNotify) TimesheetRejected(_ context.Context, rec dbmodels.Timesheet) bool {
	return n.add("rejected", rec, "")
}

func (n *fakeNotify) count(kind string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	result := 0
	for _, item := range n.sent {
		if item.Kind == kind {
			result++
		}
	}
	return result
}

func (n *fakeNotify) last() sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent[len(n.sent)-1]
}

type fakeFileStorage struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (s *fakeFileStorage) UploadSignedPdf(_ context.Context, timesheetID string, body []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := filestorage.SignedPdfKey(timesheetID)
	s.files[key] = body
	return key, nil
}

func (s *fakeFileStorage) GetFile(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	body, ok := s.files[key]
	if !ok {
		return nil, models.NewNotFoundError("файл не найден")
	}
	return body, nil
}

func (s *fakeFileStorage) DeleteFile(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, key)
	return nil
}

type testEnv struct {
	handler impl
	db      *fakeDB
	notify  *fakeNotify
	files   *fakeFileStorage
	now     time.Time
}

var (
	contractor      = models.Actor{UserID: "contractor-1", Role: models.UserRoleContractor, Name: "Иван Сидоров"}
	otherContractor = models.Actor{UserID: "contractor-2", Role: models.UserRoleContractor, Name: "Петр Петров"}
	supervisor      = models.Actor{UserID: "supervisor-1", Role: models.UserRoleSupervisor, Name: "Анна Смирнова"}
	admin           = models.Actor{UserID: "admin-1", Role: models.UserRoleAdmin, Name: "Администратор"}
)

func newTestEnv(t *testing.T) *testEnv {
	db := newFakeDB()
	db.addUser(dbmodels.TimesheetUser{BaseModel: dbmodels.BaseModel{ID: contractor.UserID}, Name: contractor.Name, Email: "ivan@example.com", Role: models.UserRoleContractor})
	db.addUser(dbmodels.TimesheetUser{BaseModel: dbmodels.BaseModel{ID: otherContractor.UserID}, Name: otherContractor.Name, Email: "petr@example.com", Role: models.UserRoleContractor})
	db.addUser(dbmodels.TimesheetUser{BaseModel: dbmodels.BaseModel{ID: supervisor.UserID}, Name: supervisor.Name, Email: "sup@x.com", Role: models.UserRoleSupervisor})
	db.addUser(dbmodels.TimesheetUser{BaseModel: dbmodels.BaseModel{ID: admin.UserID}, Name: admin.Name, Email: "admin@example.com", Role: models.UserRoleAdmin})

	env := &testEnv{
		db:     db,
		notify: &fakeNotify{},
		files:  &fakeFileStorage{files: map[string][]byte{}},
		now:    time.Date(2025, 6, 9, 10, 0, 0, 0, time.UTC),
	}
	xlsexport.NewHandler()
	env.handler = impl{
		timesheetStore: db,
		projectStore: fakeProjectStore{projects: map[string]dbmodels.Project{
			"project-1": {BaseModel: dbmodels.BaseModel{ID: "project-1"}, Name: "Миграция", IsActive: true},
		}},
		usersStore: fakeUsersStore{db: db},
		withTx: func(fn func(s stores) error) error {
			return fn(stores{timesheet: db, entry: db})
		},
		approvalLink:     approvallink.NewInstance(db, "https://hr.example.com"),
		notify:           env.notify,
		fileStorage:      env.files,
		exporter:         xlsexport.Instance,
		maxSignedPdfSize: 1024 * 1024,
		maxSignatureSize: 512 * 1024,
		siteName:         "HR Services",
		now: func() time.Time {
			return env.now
		},
	}
	return env
}

func signatureDataURL(t *testing.T) string {
	img := image.NewRGBA(image.Rect(0, 0, 60, 20))
	for x := 0; x < 60; x++ {
		img.Set(x, 10, color.Black)
	}
	var buf bytes.Buffer
	require.Nil(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

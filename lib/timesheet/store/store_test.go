package timesheetstore

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"hr-timesheet-backend/models"
)

func setupTestDB(t *testing.T) (Provider, sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.Nil(t, err)
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.Nil(t, err)
	return NewInstance(gdb), mock, func() {
		_ = sqlDB.Close()
	}
}

func TestUpdateWithStatus(t *testing.T) {
	updMap := map[string]interface{}{
		"status":        models.TimesheetStatusApproved,
		"approver_name": "Анна",
	}
	expected := []models.TimesheetStatus{models.TimesheetStatusSubmitted}
	query := `UPDATE "timesheets" SET .* WHERE id = \$\d+ AND status IN \(\$\d+\)`

	t.Run(`row changed`, func(t *testing.T) {
		store, mock, close := setupTestDB(t)
		defer close()
		mock.ExpectBegin()
		mock.ExpectExec(query).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		changed, err := store.UpdateWithStatus("ts-1", expected, updMap)
		require.Nil(t, err)
		require.True(t, changed)
		require.Nil(t, mock.ExpectationsWereMet())
	})

	t.Run(`status already changed`, func(t *testing.T) {
		store, mock, close := setupTestDB(t)
		defer close()
		mock.ExpectBegin()
		mock.ExpectExec(query).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		changed, err := store.UpdateWithStatus("ts-1", expected, updMap)
		require.Nil(t, err)
		require.False(t, changed)
		require.Nil(t, mock.ExpectationsWereMet())
	})

	t.Run(`nothing to update`, func(t *testing.T) {
		store, mock, close := setupTestDB(t)
		defer close()

		changed, err := store.UpdateWithStatus("ts-1", nil, updMap)
		require.Nil(t, err)
		require.False(t, changed)
		require.Nil(t, mock.ExpectationsWereMet())
	})
}

func TestGetByToken(t *testing.T) {
	t.Run(`empty token never queries`, func(t *testing.T) {
		store, mock, close := setupTestDB(t)
		defer close()

		rec, err := store.GetByToken("")
		require.Nil(t, err)
		require.Nil(t, rec)
		require.Nil(t, mock.ExpectationsWereMet())
	})

	t.Run(`unknown token`, func(t *testing.T) {
		store, mock, close := setupTestDB(t)
		defer close()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "timesheets" WHERE approval_token = $1`)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		rec, err := store.GetByToken("missing")
		require.Nil(t, err)
		require.Nil(t, rec)
		require.Nil(t, mock.ExpectationsWereMet())
	})
}

func TestListCountSupervisorQueue(t *testing.T) {
	store, mock, close := setupTestDB(t)
	defer close()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "timesheets" WHERE (status = $1 OR lower(supervisor_email) = lower($2))`)).
		WithArgs("submitted", "sup@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	rowCount, err := store.ListCount(Filter{SupervisorQueue: true, SupervisorEmail: "sup@x.com"})
	require.Nil(t, err)
	require.Equal(t, int64(3), rowCount)
	require.Nil(t, mock.ExpectationsWereMet())
}

func TestSupersededToken(t *testing.T) {
	t.Run(`replaced token is stored once`, func(t *testing.T) {
		store, mock, close := setupTestDB(t)
		defer close()
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "timesheet_approval_tokens" .* ON CONFLICT DO NOTHING`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.Nil(t, store.SupersedeToken("ts-1", "old-token", time.Now()))
		require.Nil(t, mock.ExpectationsWereMet())
	})

	t.Run(`empty token is skipped`, func(t *testing.T) {
		store, mock, close := setupTestDB(t)
		defer close()

		require.Nil(t, store.SupersedeToken("ts-1", "", time.Now()))
		rec, err := store.GetBySupersededToken("")
		require.Nil(t, err)
		require.Nil(t, rec)
		require.Nil(t, mock.ExpectationsWereMet())
	})

	t.Run(`unknown token`, func(t *testing.T) {
		store, mock, close := setupTestDB(t)
		defer close()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "timesheet_approval_tokens" WHERE token = $1`)).
			WillReturnRows(sqlmock.NewRows([]string{"token"}))

		rec, err := store.GetBySupersededToken("missing")
		require.Nil(t, err)
		require.Nil(t, rec)
		require.Nil(t, mock.ExpectationsWereMet())
	})
}

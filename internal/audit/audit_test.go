package audit

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guild-intake/internal/common/logger"
	"guild-intake/internal/models"
	"guild-intake/internal/review"
)

func TestAfterTransitionInsertsAuditRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectExec("INSERT INTO audit_log").
		WithArgs(review.EventAccepted, "application", "app-001", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	r := NewRecorder(db, logger.NewNoOpLogger())
	r.AfterTransition(context.Background(), review.EventAccepted, models.ApplicationRecord{
		ID:          "app-001",
		UserID:      "user-1",
		Status:      models.StatusAccepted,
		ProcessedBy: "officer-1",
	}, "officer-1")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAfterTransitionSwallowsInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectExec("INSERT INTO audit_log").
		WillReturnError(assert.AnError)

	r := NewRecorder(db, logger.NewNoOpLogger())

	// Must not panic or surface the failure.
	r.AfterTransition(context.Background(), review.EventRejected, models.ApplicationRecord{
		ID:     "app-002",
		UserID: "user-2",
		Status: models.StatusRejected,
	}, "officer-1")

	assert.NoError(t, mock.ExpectationsWereMet())
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/roamio-app/roamio-backend/internal/domain"
)

func newSavedPlaceRepoWithMock(t *testing.T) (*SavedPlaceRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSavedPlaceRepo(sqlx.NewDb(db, "sqlmock")), mock
}

func TestSavedPlaceRemoveReportsMissingRow(t *testing.T) {
	repo, mock := newSavedPlaceRepoWithMock(t)

	userID := uuid.New()
	ref := domain.PlaceRef{Kind: domain.PlaceKindAttraction, ID: uuid.New()}

	mock.ExpectExec(regexp.QuoteMeta(
		`DELETE FROM saved_place WHERE user_id = $1 AND place_id = $2 AND place_type = $3`,
	)).
		WithArgs(userID, ref.ID, ref.Kind).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Remove(context.Background(), userID, ref)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows for a place that was never saved, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSavedPlaceRemoveDeletesSavedRow(t *testing.T) {
	repo, mock := newSavedPlaceRepoWithMock(t)

	userID := uuid.New()
	ref := domain.PlaceRef{Kind: domain.PlaceKindRestaurant, ID: uuid.New()}

	mock.ExpectExec(regexp.QuoteMeta(
		`DELETE FROM saved_place WHERE user_id = $1 AND place_id = $2 AND place_type = $3`,
	)).
		WithArgs(userID, ref.ID, ref.Kind).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Remove(context.Background(), userID, ref); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"rentloop-backend/internal/repository"
	"rentloop-backend/internal/repository/postgres"
)

func TestSignMarksTheInspection(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	at := time.Now()
	mock.ExpectExec(`UPDATE inspections SET signed = true, signed_by = \$1, signed_at = \$2 WHERE id = \$3 AND rental_id = \$4 AND signed = false`).
		WithArgs(int64(100), at, int64(5), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewInspectionRepository(db)
	err = repo.Sign(context.Background(), 42, 5, 100, at)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignRefusesAnotherRentalsInspection(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	// Inspection 999 belongs to a different rental, so the scoped update
	// matches nothing and the existence check comes back empty.
	mock.ExpectExec(`UPDATE inspections`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(999), int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	repo := postgres.NewInspectionRepository(db)
	err = repo.Sign(context.Background(), 42, 999, 100, time.Now())

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignRefusesASecondSignature(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE inspections`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(5), int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo := postgres.NewInspectionRepository(db)
	err = repo.Sign(context.Background(), 42, 5, 100, time.Now())

	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

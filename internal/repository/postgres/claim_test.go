package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"rentloop-backend/internal/domain"
	"rentloop-backend/internal/repository"
	"rentloop-backend/internal/repository/postgres"
)

func TestGetOpenByRentalReadsFreshClaim(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	// A freshly opened claim has no resolved amount yet; the read must
	// still scan cleanly.
	now := time.Now()
	mock.ExpectQuery(`SELECT .+ COALESCE\(resolved_amount_cents, 0\).+ FROM damage_claims WHERE rental_id = \$1 AND resolution = \$2`).
		WithArgs(int64(42), domain.ClaimResolutionOpen).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "rental_id", "filed_by", "description", "amount_cents",
			"photo_urls", "resolution", "resolved_amount_cents", "created_on", "resolved_on",
		}).AddRow(int64(9), int64(42), int64(200), "bent frame", int32(3000), "", domain.ClaimResolutionOpen, int32(0), now, nil))

	repo := postgres.NewClaimRepository(db)
	claim, err := repo.GetOpenByRental(context.Background(), 42)

	assert.NoError(t, err)
	assert.Equal(t, int64(9), claim.ID)
	assert.Equal(t, int32(0), claim.ResolvedAmountCents)
	assert.Nil(t, claim.ResolvedOn)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOpenByRentalNoOpenClaim(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM damage_claims WHERE rental_id = \$1 AND resolution = \$2`).
		WithArgs(int64(42), domain.ClaimResolutionOpen).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := postgres.NewClaimRepository(db)
	_, err = repo.GetOpenByRental(context.Background(), 42)

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

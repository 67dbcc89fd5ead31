package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rentloop-backend/internal/domain"
	"rentloop-backend/internal/logger"
	"rentloop-backend/internal/repository"
)

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

const rentalColumns = `id, item_id, renter_id, owner_id, start_date, end_date, status, status_updated_at, activated_at, completed_at, disputed_at, total_cost_cents, deposit_cents, created_on, updated_on`

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	query := `INSERT INTO rentals (item_id, renter_id, owner_id, start_date, end_date, status, status_updated_at, total_cost_cents, deposit_cents, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	now := time.Now()
	if rt.Status == "" {
		rt.Status = domain.RentalStatusPending
	}
	rt.StatusUpdatedAt = now
	return r.db.QueryRowContext(ctx, query, rt.ItemID, rt.RenterID, rt.OwnerID, rt.StartDate, rt.EndDate, rt.Status, rt.StatusUpdatedAt, rt.TotalCostCents, rt.DepositCents, now, now).Scan(&rt.ID)
}

func (r *rentalRepository) GetByID(ctx context.Context, id int64) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return rt, err
}

// Transition applies one compare-and-swap status update together with its
// dependent rows. It is the only code that writes the status column, and it
// re-validates the transition table on every call so that no caller, present
// or future, can persist a pair the table does not list.
func (r *rentalRepository) Transition(ctx context.Context, args repository.TransitionArgs) error {
	if !domain.TransitionAllowed(args.From, args.To) {
		return fmt.Errorf("%w: %s -> %s", repository.ErrIllegalTransition, args.From, args.To)
	}
	if args.From == args.To {
		// Identity writes are legal no-ops and must not touch status_updated_at.
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var activatedAt, completedAt, disputedAt sql.NullTime
	if args.SetActivatedAt {
		activatedAt = sql.NullTime{Time: args.At, Valid: true}
	}
	if args.SetCompletedAt {
		completedAt = sql.NullTime{Time: args.At, Valid: true}
	}
	if args.SetDisputedAt {
		disputedAt = sql.NullTime{Time: args.At, Valid: true}
	}

	query := `UPDATE rentals
	          SET status = $1,
	              status_updated_at = $2,
	              activated_at = COALESCE(activated_at, $3),
	              completed_at = COALESCE(completed_at, $4),
	              disputed_at = COALESCE(disputed_at, $5),
	              updated_on = $6
	          WHERE id = $7 AND status = $8`
	res, err := tx.ExecContext(ctx, query, args.To, args.At, activatedAt, completedAt, disputedAt, args.At, args.RentalID, args.From)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		logger.DebugContext(ctx, "Status CAS matched zero rows", "rental_id", args.RentalID, "expected_status", args.From)
		return repository.ErrConflict
	}

	for _, entry := range args.LedgerEntries {
		insert := `INSERT INTO ledger_entries (rental_id, user_id, type, amount_cents, reference, description, created_on)
		           VALUES ($1, $2, $3, $4, $5, $6, $7)`
		if _, err := tx.ExecContext(ctx, insert, entry.RentalID, entry.UserID, entry.Type, entry.AmountCents, entry.Reference, entry.Description, args.At); err != nil {
			return fmt.Errorf("ledger entry: %w", err)
		}
	}

	if args.OpenClaim != nil {
		c := args.OpenClaim
		insert := `INSERT INTO damage_claims (rental_id, filed_by, description, amount_cents, photo_urls, resolution, created_on)
		           VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
		if err := tx.QueryRowContext(ctx, insert, c.RentalID, c.FiledBy, c.Description, c.AmountCents, joinURLs(c.PhotoURLs), domain.ClaimResolutionOpen, args.At).Scan(&c.ID); err != nil {
			return fmt.Errorf("damage claim: %w", err)
		}
	}

	if args.ResolveClaim != nil {
		update := `UPDATE damage_claims
		           SET resolution = $1, resolved_amount_cents = $2, resolved_on = $3
		           WHERE rental_id = $4 AND resolution = $5`
		res, err := tx.ExecContext(ctx, update, args.ResolveClaim.Resolution, args.ResolveClaim.ResolvedAmountCents, args.At, args.RentalID, domain.ClaimResolutionOpen)
		if err != nil {
			return fmt.Errorf("resolve claim: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("resolve claim: %w", repository.ErrNotFound)
		}
	}

	return tx.Commit()
}

func (r *rentalRepository) ListDueForActivation(ctx context.Context, now time.Time) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE status = $1 AND start_date <= $2 ORDER BY start_date`
	rows, err := r.db.QueryContext(ctx, query, domain.RentalStatusAwaitingStartDate, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, rows.Err()
}

func (r *rentalRepository) ListByRenter(ctx context.Context, renterID int64, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	return r.list(ctx, "renter_id", renterID, status, page, pageSize)
}

func (r *rentalRepository) ListByOwner(ctx context.Context, ownerID int64, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	return r.list(ctx, "owner_id", ownerID, status, page, pageSize)
}

func (r *rentalRepository) list(ctx context.Context, column string, userID int64, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE ` + column + ` = $1`
	args := []interface{}{userID}
	argIdx := 2
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") as sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, 0, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, count, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRental(row rowScanner) (*domain.Rental, error) {
	rt := &domain.Rental{}
	var activatedAt, completedAt, disputedAt sql.NullTime
	err := row.Scan(&rt.ID, &rt.ItemID, &rt.RenterID, &rt.OwnerID, &rt.StartDate, &rt.EndDate, &rt.Status, &rt.StatusUpdatedAt, &activatedAt, &completedAt, &disputedAt, &rt.TotalCostCents, &rt.DepositCents, &rt.CreatedOn, &rt.UpdatedOn)
	if err != nil {
		return nil, err
	}
	if activatedAt.Valid {
		rt.ActivatedAt = &activatedAt.Time
	}
	if completedAt.Valid {
		rt.CompletedAt = &completedAt.Time
	}
	if disputedAt.Valid {
		rt.DisputedAt = &disputedAt.Time
	}
	return rt, nil
}

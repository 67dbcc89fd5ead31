package jobs

import (
	"context"
	"errors"
	"time"

	"rentloop-backend/internal/domain"
	"rentloop-backend/internal/logger"
	"rentloop-backend/internal/service"
)

// ActivateDueRentals promotes every rental whose start date has passed from
// AWAITING_START_DATE to ACTIVE, issuing start_rental through the lifecycle
// service as the system actor. The job is idempotent: a rental somebody else
// already moved loses the CAS or fails its guard, and both count as
// already-applied, not as errors.
func (jr *JobRunner) ActivateDueRentals() {
	jr.runWithRecovery("ActivateDueRentals", func() {
		ctx := context.Background()
		now := time.Now()

		due, err := jr.rentalRepo.ListDueForActivation(ctx, now)
		if err != nil {
			logger.Error("Failed to list rentals due for activation", "error", err)
			return
		}

		started := 0
		skipped := 0
		for _, rt := range due {
			_, err := jr.lifecycle.Attempt(ctx, rt.ID, domain.CommandStartRental, domain.SystemActor, service.Payload{})
			switch {
			case err == nil:
				started++
			case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrGuardFailed):
				// Another caller got there first.
				skipped++
				logger.Debug("Rental already moved on", "rental_id", rt.ID, "error", err)
			default:
				logger.Error("Failed to start rental", "rental_id", rt.ID, "error", err)
			}
		}

		logger.Info("Activated due rentals", "due", len(due), "started", started, "already_applied", skipped)
	})
}

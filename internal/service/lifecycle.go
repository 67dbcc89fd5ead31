package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rentloop-backend/internal/domain"
	"rentloop-backend/internal/feed"
	"rentloop-backend/internal/logger"
	"rentloop-backend/internal/repository"
)

// Policy carries the configurable lifecycle rules.
type Policy struct {
	PickupCancelWindow     time.Duration
	LateCancelPenaltyCents int32
}

type lifecycleService struct {
	rentalRepo repository.RentalRepository
	inspRepo   repository.InspectionRepository
	claimRepo  repository.ClaimRepository
	userRepo   repository.UserRepository
	noteRepo   repository.NotificationRepository
	dispatcher NoticeDispatcher
	publisher  feed.Publisher
	policy     Policy
}

func NewLifecycleService(
	rentalRepo repository.RentalRepository,
	inspRepo repository.InspectionRepository,
	claimRepo repository.ClaimRepository,
	userRepo repository.UserRepository,
	noteRepo repository.NotificationRepository,
	dispatcher NoticeDispatcher,
	publisher feed.Publisher,
	policy Policy,
) LifecycleService {
	return &lifecycleService{
		rentalRepo: rentalRepo,
		inspRepo:   inspRepo,
		claimRepo:  claimRepo,
		userRepo:   userRepo,
		noteRepo:   noteRepo,
		dispatcher: dispatcher,
		publisher:  publisher,
		policy:     policy,
	}
}

// Attempt authenticates the actor against the command, evaluates the edge's
// guard against live data, applies the compare-and-swap write and, only
// after it commits, runs the side effects. Concurrent attempts on the same
// record are serialized by the CAS: exactly one wins, the rest observe
// ErrConflict and must re-read.
func (s *lifecycleService) Attempt(ctx context.Context, rentalID int64, cmd domain.Command, actor domain.Actor, payload Payload) (*AttemptResult, error) {
	if _, ok := domain.CommandTarget(cmd); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
	if !domain.CommandAllowsRole(cmd, actor.Role) {
		return nil, ErrUnauthorized
	}

	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := authorizeParty(actor, rt); err != nil {
		return nil, err
	}

	to, ok := domain.CommandEdge(cmd, rt.Status)
	if !ok {
		return nil, guardFailed(string(cmd), fmt.Sprintf("command cannot be issued while rental is %s", rt.Status))
	}

	now := time.Now()
	args := repository.TransitionArgs{
		RentalID: rt.ID,
		From:     rt.Status,
		To:       to,
		At:       now,
	}
	if err := s.applyGuards(ctx, cmd, actor, rt, payload, &args); err != nil {
		return nil, err
	}

	if err := s.rentalRepo.Transition(ctx, args); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, err
	}

	s.publisher.Publish(feed.Event{RentalID: rt.ID, OldStatus: args.From, NewStatus: args.To, At: now})
	logger.InfoContext(ctx, "Rental transitioned",
		"rental_id", rt.ID, "command", cmd, "from", args.From, "to", args.To, "actor_role", actor.Role)

	deferred := s.notifyParties(ctx, rt, cmd, args.To)

	result := &AttemptResult{
		RentalID:       rt.ID,
		OldStatus:      args.From,
		NewStatus:      args.To,
		At:             now,
		NoticeDeferred: deferred,
	}

	// PAID is transitional: promote to the pickup-inspection stage right
	// away, under the same CAS discipline.
	if cmd == domain.CommandCompletePayment {
		if promoted, ok := s.promoteAfterPayment(ctx, rt.ID); ok {
			result.NewStatus = promoted
		}
	}

	return result, nil
}

// authorizeParty ties the renter and owner roles to the record's own
// principals. System and arbiter identities are not parties to the rental.
func authorizeParty(actor domain.Actor, rt *domain.Rental) error {
	switch actor.Role {
	case domain.RoleSystem, domain.RoleArbiter:
		return nil
	case domain.RoleRenter:
		if actor.UserID != rt.RenterID {
			return ErrUnauthorized
		}
	case domain.RoleOwner:
		if actor.UserID != rt.OwnerID {
			return ErrUnauthorized
		}
	default:
		return ErrUnauthorized
	}
	return nil
}

// applyGuards evaluates the command's guard against live data and fills in
// the transition's milestone stamps and dependent rows.
func (s *lifecycleService) applyGuards(ctx context.Context, cmd domain.Command, actor domain.Actor, rt *domain.Rental, payload Payload, args *repository.TransitionArgs) error {
	now := args.At

	switch cmd {
	case domain.CommandCompletePayment:
		if payload.PaymentReference == "" {
			return guardFailed(string(cmd), "payment capture is not confirmed")
		}
		args.LedgerEntries = append(args.LedgerEntries, domain.LedgerEntry{
			RentalID:    rt.ID,
			UserID:      rt.RenterID,
			Type:        domain.LedgerEntryHold,
			AmountCents: -(rt.TotalCostCents + rt.DepositCents),
			Reference:   uuid.NewString(),
			Description: fmt.Sprintf("Hold for rental %d, payment %s", rt.ID, payload.PaymentReference),
		})

	case domain.CommandDecline:
		// Provider may decline any time before payment; no guard.

	case domain.CommandCancel:
		return s.applyCancelGuards(cmd, rt, args, now)

	case domain.CommandCompletePickupInspection:
		return s.requireSignedInspection(ctx, cmd, rt, domain.InspectionDirectionOutbound)

	case domain.CommandStartRental:
		if rt.StartDate.After(now) {
			return guardFailed(string(cmd), fmt.Sprintf("start date %s has not been reached", rt.StartDate.Format("2006-01-02")))
		}
		args.SetActivatedAt = true

	case domain.CommandInitiateReturn:
		// Requester may hand back any time while active; no guard.

	case domain.CommandCompleteReturnInspection:
		return s.requireSignedInspection(ctx, cmd, rt, domain.InspectionDirectionInbound)

	case domain.CommandConfirmCompletion:
		if _, err := s.claimRepo.GetOpenByRental(ctx, rt.ID); err == nil {
			return guardFailed(string(cmd), "a damage claim is open, resolve the dispute instead")
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		args.SetCompletedAt = true
		args.LedgerEntries = append(args.LedgerEntries,
			domain.LedgerEntry{
				RentalID:    rt.ID,
				UserID:      rt.OwnerID,
				Type:        domain.LedgerEntryCapture,
				AmountCents: rt.TotalCostCents,
				Reference:   uuid.NewString(),
				Description: fmt.Sprintf("Earnings from rental %d", rt.ID),
			},
			domain.LedgerEntry{
				RentalID:    rt.ID,
				UserID:      rt.RenterID,
				Type:        domain.LedgerEntryRelease,
				AmountCents: rt.DepositCents,
				Reference:   uuid.NewString(),
				Description: fmt.Sprintf("Deposit released for rental %d", rt.ID),
			},
		)

	case domain.CommandReportDamage:
		if payload.AmountCents <= 0 {
			return guardFailed(string(cmd), "claim amount must be positive")
		}
		if payload.Description == "" {
			return guardFailed(string(cmd), "claim description is required")
		}
		if _, err := s.claimRepo.GetOpenByRental(ctx, rt.ID); err == nil {
			return guardFailed(string(cmd), "a damage claim is already open")
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		args.SetDisputedAt = true
		args.OpenClaim = &domain.DamageClaim{
			RentalID:    rt.ID,
			FiledBy:     actor.UserID,
			Description: payload.Description,
			AmountCents: payload.AmountCents,
			PhotoURLs:   payload.PhotoURLs,
			Resolution:  domain.ClaimResolutionOpen,
		}

	case domain.CommandResolveDispute:
		claim, err := s.claimRepo.GetOpenByRental(ctx, rt.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return guardFailed(string(cmd), "no open damage claim to resolve")
			}
			return err
		}
		if payload.Resolution != domain.ClaimResolutionAccepted && payload.Resolution != domain.ClaimResolutionRejected {
			return guardFailed(string(cmd), "resolution must be ACCEPTED or REJECTED")
		}
		s.applyDisputeSettlement(rt, claim, payload, args)
		args.SetCompletedAt = true
	}

	return nil
}

func (s *lifecycleService) applyCancelGuards(cmd domain.Command, rt *domain.Rental, args *repository.TransitionArgs, now time.Time) error {
	switch rt.Status {
	case domain.RentalStatusPending:
		// Nothing was paid yet.
		return nil

	case domain.RentalStatusPaid, domain.RentalStatusAwaitingPickupInspection:
		if rt.Status == domain.RentalStatusAwaitingPickupInspection {
			deadline := rt.StartDate.Add(-s.policy.PickupCancelWindow)
			if now.After(deadline) {
				return guardFailed(string(cmd), fmt.Sprintf("cancellation window closed %s before the start date", s.policy.PickupCancelWindow))
			}
		}
		args.LedgerEntries = append(args.LedgerEntries, domain.LedgerEntry{
			RentalID:    rt.ID,
			UserID:      rt.RenterID,
			Type:        domain.LedgerEntryRelease,
			AmountCents: rt.TotalCostCents + rt.DepositCents,
			Reference:   uuid.NewString(),
			Description: fmt.Sprintf("Refund for cancelled rental %d", rt.ID),
		})
		return nil

	case domain.RentalStatusAwaitingStartDate:
		// Late cancellation: refund minus the penalty, which compensates
		// the owner.
		penalty := s.policy.LateCancelPenaltyCents
		if penalty > rt.TotalCostCents {
			penalty = rt.TotalCostCents
		}
		args.LedgerEntries = append(args.LedgerEntries,
			domain.LedgerEntry{
				RentalID:    rt.ID,
				UserID:      rt.RenterID,
				Type:        domain.LedgerEntryRelease,
				AmountCents: rt.TotalCostCents + rt.DepositCents - penalty,
				Reference:   uuid.NewString(),
				Description: fmt.Sprintf("Refund for late-cancelled rental %d", rt.ID),
			},
			domain.LedgerEntry{
				RentalID:    rt.ID,
				UserID:      rt.OwnerID,
				Type:        domain.LedgerEntryPenalty,
				AmountCents: penalty,
				Reference:   uuid.NewString(),
				Description: fmt.Sprintf("Late cancellation penalty for rental %d", rt.ID),
			},
		)
		return nil
	}
	return guardFailed(string(cmd), fmt.Sprintf("command cannot be issued while rental is %s", rt.Status))
}

func (s *lifecycleService) applyDisputeSettlement(rt *domain.Rental, claim *domain.DamageClaim, payload Payload, args *repository.TransitionArgs) {
	deduction := int32(0)
	if payload.Resolution == domain.ClaimResolutionAccepted {
		deduction = payload.ResolvedAmountCents
		if deduction <= 0 || deduction > claim.AmountCents {
			deduction = claim.AmountCents
		}
		if deduction > rt.DepositCents {
			deduction = rt.DepositCents
		}
	}

	args.ResolveClaim = &repository.ClaimResolutionArgs{
		Resolution:          payload.Resolution,
		ResolvedAmountCents: deduction,
	}

	args.LedgerEntries = append(args.LedgerEntries, domain.LedgerEntry{
		RentalID:    rt.ID,
		UserID:      rt.OwnerID,
		Type:        domain.LedgerEntryCapture,
		AmountCents: rt.TotalCostCents,
		Reference:   uuid.NewString(),
		Description: fmt.Sprintf("Earnings from rental %d", rt.ID),
	})
	if deduction > 0 {
		args.LedgerEntries = append(args.LedgerEntries, domain.LedgerEntry{
			RentalID:    rt.ID,
			UserID:      rt.OwnerID,
			Type:        domain.LedgerEntryClaimDeduction,
			AmountCents: deduction,
			Reference:   uuid.NewString(),
			Description: fmt.Sprintf("Damage claim settlement for rental %d", rt.ID),
		})
	}
	args.LedgerEntries = append(args.LedgerEntries, domain.LedgerEntry{
		RentalID:    rt.ID,
		UserID:      rt.RenterID,
		Type:        domain.LedgerEntryRelease,
		AmountCents: rt.DepositCents - deduction,
		Reference:   uuid.NewString(),
		Description: fmt.Sprintf("Deposit released for rental %d", rt.ID),
	})
}

func (s *lifecycleService) requireSignedInspection(ctx context.Context, cmd domain.Command, rt *domain.Rental, direction domain.InspectionDirection) error {
	insp, err := s.inspRepo.GetByRentalAndDirection(ctx, rt.ID, direction)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return guardFailed(string(cmd), fmt.Sprintf("no %s inspection exists", direction))
		}
		return err
	}
	if !insp.Signed {
		return guardFailed(string(cmd), fmt.Sprintf("%s inspection is not signed", direction))
	}
	if insp.SignedBy != rt.RenterID {
		return guardFailed(string(cmd), fmt.Sprintf("%s inspection was not signed by the renter", direction))
	}
	return nil
}

func (s *lifecycleService) promoteAfterPayment(ctx context.Context, rentalID int64) (domain.RentalStatus, bool) {
	now := time.Now()
	args := repository.TransitionArgs{
		RentalID: rentalID,
		From:     domain.RentalStatusPaid,
		To:       domain.RentalStatusAwaitingPickupInspection,
		At:       now,
	}
	if err := s.rentalRepo.Transition(ctx, args); err != nil {
		logger.WarnContext(ctx, "Automatic pickup-stage promotion did not apply",
			"rental_id", rentalID, "error", err)
		return "", false
	}
	s.publisher.Publish(feed.Event{RentalID: rentalID, OldStatus: args.From, NewStatus: args.To, At: now})
	logger.InfoContext(ctx, "Rental transitioned",
		"rental_id", rentalID, "command", "auto_promote", "from", args.From, "to", args.To, "actor_role", domain.RoleSystem)
	return args.To, true
}

// notifyParties creates the in-app rows and hands emails to the dispatcher.
// Everything here is best-effort: a failure is logged or dead-lettered,
// never surfaced as a command failure.
func (s *lifecycleService) notifyParties(ctx context.Context, rt *domain.Rental, cmd domain.Command, newStatus domain.RentalStatus) bool {
	title := fmt.Sprintf("Rental %s", humanStatus(newStatus))
	message := fmt.Sprintf("Rental %d is now %s", rt.ID, humanStatus(newStatus))
	attrs := map[string]string{
		"type":      "RENTAL_TRANSITION",
		"rental_id": fmt.Sprintf("%d", rt.ID),
		"status":    string(newStatus),
		"command":   string(cmd),
	}

	deferred := false
	for _, userID := range []int64{rt.RenterID, rt.OwnerID} {
		note := &domain.Notification{
			UserID:     userID,
			Title:      title,
			Message:    message,
			Attributes: attrs,
		}
		if err := s.noteRepo.Create(ctx, note); err != nil {
			logger.WarnContext(ctx, "Failed to create notification row", "user_id", userID, "rental_id", rt.ID, "error", err)
		}

		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			logger.WarnContext(ctx, "Failed to load user for notice", "user_id", userID, "rental_id", rt.ID, "error", err)
			continue
		}
		if err := s.dispatcher.Enqueue(Notice{
			ToEmail: user.Email,
			ToName:  user.Name,
			Subject: title,
			Body:    fmt.Sprintf("Hello %s,\n\n%s.\n\nBest regards,\nThe Rentloop Team", user.Name, message),
		}); err != nil {
			deferred = true
		}
	}
	return deferred
}

func humanStatus(s domain.RentalStatus) string {
	switch s {
	case domain.RentalStatusPaid:
		return "paid"
	case domain.RentalStatusAwaitingPickupInspection:
		return "awaiting pickup inspection"
	case domain.RentalStatusAwaitingStartDate:
		return "awaiting its start date"
	case domain.RentalStatusActive:
		return "active"
	case domain.RentalStatusAwaitingReturnInspection:
		return "awaiting return inspection"
	case domain.RentalStatusPendingReview:
		return "pending review"
	case domain.RentalStatusCompleted:
		return "completed"
	case domain.RentalStatusCancelled:
		return "cancelled"
	case domain.RentalStatusDeclined:
		return "declined"
	case domain.RentalStatusDisputed:
		return "disputed"
	}
	return string(s)
}

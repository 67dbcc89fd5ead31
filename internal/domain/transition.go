package domain

// Command names a lifecycle action an actor can issue against a rental.
type Command string

const (
	CommandCompletePayment          Command = "complete_payment"
	CommandDecline                  Command = "decline"
	CommandCancel                   Command = "cancel"
	CommandCompletePickupInspection Command = "complete_pickup_inspection"
	CommandStartRental              Command = "start_rental"
	CommandInitiateReturn           Command = "initiate_return"
	CommandCompleteReturnInspection Command = "complete_return_inspection"
	CommandConfirmCompletion        Command = "confirm_completion"
	CommandReportDamage             Command = "report_damage"
	CommandResolveDispute           Command = "resolve_dispute"
)

// transitionTable is the single source of truth for which status pairs are
// legal. The lifecycle service and the store-level enforcer both consult it;
// neither carries its own copy.
var transitionTable = map[RentalStatus][]RentalStatus{
	RentalStatusPending: {
		RentalStatusPaid,
		RentalStatusDeclined,
		RentalStatusCancelled,
	},
	RentalStatusPaid: {
		RentalStatusAwaitingPickupInspection,
		RentalStatusCancelled,
	},
	RentalStatusAwaitingPickupInspection: {
		RentalStatusAwaitingStartDate,
		RentalStatusCancelled,
	},
	RentalStatusAwaitingStartDate: {
		RentalStatusActive,
		RentalStatusCancelled,
	},
	RentalStatusActive: {
		RentalStatusAwaitingReturnInspection,
	},
	RentalStatusAwaitingReturnInspection: {
		RentalStatusPendingReview,
	},
	RentalStatusPendingReview: {
		RentalStatusCompleted,
		RentalStatusDisputed,
	},
	RentalStatusDisputed: {
		RentalStatusCompleted,
	},
}

// TransitionAllowed reports whether the (from, to) pair is legal. Identity
// pairs are always legal no-ops.
func TransitionAllowed(from, to RentalStatus) bool {
	if from == to {
		return true
	}
	for _, next := range transitionTable[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from the given one.
func NextStatuses(from RentalStatus) []RentalStatus {
	next := transitionTable[from]
	out := make([]RentalStatus, len(next))
	copy(out, next)
	return out
}

// Statuses lists every status that appears in the transition table, sources
// and sinks included.
func Statuses() []RentalStatus {
	return []RentalStatus{
		RentalStatusPending,
		RentalStatusPaid,
		RentalStatusAwaitingPickupInspection,
		RentalStatusAwaitingStartDate,
		RentalStatusActive,
		RentalStatusAwaitingReturnInspection,
		RentalStatusPendingReview,
		RentalStatusCompleted,
		RentalStatusCancelled,
		RentalStatusDeclined,
		RentalStatusDisputed,
	}
}

// commandTargets maps each command to the status it drives a rental into.
// Cancel is the one command whose source edge depends on the current status;
// every other command has exactly one source status as well.
var commandTargets = map[Command]RentalStatus{
	CommandCompletePayment:          RentalStatusPaid,
	CommandDecline:                  RentalStatusDeclined,
	CommandCancel:                   RentalStatusCancelled,
	CommandCompletePickupInspection: RentalStatusAwaitingStartDate,
	CommandStartRental:              RentalStatusActive,
	CommandInitiateReturn:           RentalStatusAwaitingReturnInspection,
	CommandCompleteReturnInspection: RentalStatusPendingReview,
	CommandConfirmCompletion:        RentalStatusCompleted,
	CommandReportDamage:             RentalStatusDisputed,
	CommandResolveDispute:           RentalStatusCompleted,
}

// commandSources maps each command to the statuses it may be issued from.
var commandSources = map[Command][]RentalStatus{
	CommandCompletePayment:          {RentalStatusPending},
	CommandDecline:                  {RentalStatusPending},
	CommandCancel:                   {RentalStatusPending, RentalStatusPaid, RentalStatusAwaitingPickupInspection, RentalStatusAwaitingStartDate},
	CommandCompletePickupInspection: {RentalStatusAwaitingPickupInspection},
	CommandStartRental:              {RentalStatusAwaitingStartDate},
	CommandInitiateReturn:           {RentalStatusActive},
	CommandCompleteReturnInspection: {RentalStatusAwaitingReturnInspection},
	CommandConfirmCompletion:        {RentalStatusPendingReview},
	CommandReportDamage:             {RentalStatusPendingReview},
	CommandResolveDispute:           {RentalStatusDisputed},
}

// CommandTarget returns the status the command transitions into.
func CommandTarget(cmd Command) (RentalStatus, bool) {
	to, ok := commandTargets[cmd]
	return to, ok
}

// CommandEdge resolves the single table edge the command maps to from the
// given current status. ok is false when the command cannot be issued from
// that status.
func CommandEdge(cmd Command, from RentalStatus) (RentalStatus, bool) {
	to, ok := commandTargets[cmd]
	if !ok {
		return "", false
	}
	for _, src := range commandSources[cmd] {
		if src == from {
			return to, true
		}
	}
	return "", false
}

// Commands lists the closed set of lifecycle commands.
func Commands() []Command {
	return []Command{
		CommandCompletePayment,
		CommandDecline,
		CommandCancel,
		CommandCompletePickupInspection,
		CommandStartRental,
		CommandInitiateReturn,
		CommandCompleteReturnInspection,
		CommandConfirmCompletion,
		CommandReportDamage,
		CommandResolveDispute,
	}
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransitionAllowed_HappyPath(t *testing.T) {
	path := []RentalStatus{
		RentalStatusPending,
		RentalStatusPaid,
		RentalStatusAwaitingPickupInspection,
		RentalStatusAwaitingStartDate,
		RentalStatusActive,
		RentalStatusAwaitingReturnInspection,
		RentalStatusPendingReview,
		RentalStatusCompleted,
	}
	for i := 0; i < len(path)-1; i++ {
		assert.True(t, TransitionAllowed(path[i], path[i+1]), "%s -> %s", path[i], path[i+1])
	}
}

func TestTransitionAllowed_SideBranches(t *testing.T) {
	for _, from := range []RentalStatus{RentalStatusPending, RentalStatusPaid, RentalStatusAwaitingPickupInspection, RentalStatusAwaitingStartDate} {
		assert.True(t, TransitionAllowed(from, RentalStatusCancelled), "%s -> CANCELLED", from)
	}
	assert.True(t, TransitionAllowed(RentalStatusPending, RentalStatusDeclined))
	assert.True(t, TransitionAllowed(RentalStatusPendingReview, RentalStatusDisputed))
	assert.True(t, TransitionAllowed(RentalStatusDisputed, RentalStatusCompleted))
}

func TestTransitionAllowed_IdentityIsAlwaysLegal(t *testing.T) {
	for _, s := range Statuses() {
		assert.True(t, TransitionAllowed(s, s), "%s -> %s", s, s)
	}
}

func TestTransitionAllowed_RejectsUnlistedPairs(t *testing.T) {
	illegal := [][2]RentalStatus{
		{RentalStatusPending, RentalStatusActive},
		{RentalStatusPending, RentalStatusAwaitingPickupInspection}, // legacy shortcut, not supported
		{RentalStatusPaid, RentalStatusPending},
		{RentalStatusActive, RentalStatusCancelled},
		{RentalStatusActive, RentalStatusCompleted},
		{RentalStatusCompleted, RentalStatusActive},
		{RentalStatusCancelled, RentalStatusPending},
		{RentalStatusDisputed, RentalStatusPendingReview},
		{RentalStatusDeclined, RentalStatusPaid},
		{RentalStatusAwaitingReturnInspection, RentalStatusActive},
	}
	for _, pair := range illegal {
		assert.False(t, TransitionAllowed(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
	}
}

func TestTransitionAllowed_TerminalStatesHaveNoExits(t *testing.T) {
	for _, terminal := range []RentalStatus{RentalStatusCompleted, RentalStatusCancelled, RentalStatusDeclined} {
		assert.True(t, terminal.IsTerminal())
		for _, to := range Statuses() {
			if to == terminal {
				continue
			}
			assert.False(t, TransitionAllowed(terminal, to), "%s -> %s", terminal, to)
		}
	}
}

func TestCommandEdge_EveryCommandMapsToTableEdges(t *testing.T) {
	// Whatever status a command resolves an edge from, the edge must be in
	// the transition table. The command layer can never widen the table.
	for _, cmd := range Commands() {
		for _, from := range Statuses() {
			to, ok := CommandEdge(cmd, from)
			if !ok {
				continue
			}
			assert.True(t, TransitionAllowed(from, to), "command %s resolved illegal edge %s -> %s", cmd, from, to)
		}
	}
}

func TestCommandEdge_CancelFollowsCurrentStatus(t *testing.T) {
	for _, from := range []RentalStatus{RentalStatusPending, RentalStatusPaid, RentalStatusAwaitingPickupInspection, RentalStatusAwaitingStartDate} {
		to, ok := CommandEdge(CommandCancel, from)
		assert.True(t, ok)
		assert.Equal(t, RentalStatusCancelled, to)
	}
	for _, from := range []RentalStatus{RentalStatusActive, RentalStatusPendingReview, RentalStatusCompleted, RentalStatusDisputed} {
		_, ok := CommandEdge(CommandCancel, from)
		assert.False(t, ok, "cancel must not resolve from %s", from)
	}
}

func TestCommandEdge_UnknownCommand(t *testing.T) {
	_, ok := CommandEdge(Command("nonsense"), RentalStatusPending)
	assert.False(t, ok)
}

func TestCommandAllowsRole(t *testing.T) {
	assert.True(t, CommandAllowsRole(CommandConfirmCompletion, RoleOwner))
	assert.False(t, CommandAllowsRole(CommandConfirmCompletion, RoleRenter))
	assert.True(t, CommandAllowsRole(CommandStartRental, RoleSystem))
	assert.False(t, CommandAllowsRole(CommandReportDamage, RoleRenter))
	assert.True(t, CommandAllowsRole(CommandResolveDispute, RoleArbiter))
	assert.False(t, CommandAllowsRole(CommandResolveDispute, RoleOwner))
	assert.False(t, CommandAllowsRole(CommandCancel, RoleOwner))
}

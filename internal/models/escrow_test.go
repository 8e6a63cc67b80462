package models

import (
	"testing"
	"time"
)

func TestIsValidEscrowTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		// Happy path
		{EscrowStatusCreated, EscrowStatusBuyerConfirmed, true},
		{EscrowStatusCreated, EscrowStatusSellerConfirmed, true},
		{EscrowStatusBuyerConfirmed, EscrowStatusCompleted, true},
		{EscrowStatusSellerConfirmed, EscrowStatusCompleted, true},

		// Cancellation / rejection paths
		{EscrowStatusCreated, EscrowStatusRefunded, true},
		{EscrowStatusCreated, EscrowStatusRejected, true},
		{EscrowStatusBuyerConfirmed, EscrowStatusRefunded, true},
		{EscrowStatusSellerConfirmed, EscrowStatusRejected, true},

		// Invalid transitions
		{EscrowStatusCreated, EscrowStatusCompleted, false},
		{EscrowStatusCompleted, EscrowStatusRefunded, false},
		{EscrowStatusRefunded, EscrowStatusCompleted, false},
		{EscrowStatusRejected, EscrowStatusBuyerConfirmed, false},
		{EscrowStatusBuyerConfirmed, EscrowStatusSellerConfirmed, false},
		{"nonexistent", EscrowStatusCompleted, false},
		{EscrowStatusCreated, "nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			result := IsValidEscrowTransition(tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("IsValidEscrowTransition(%q, %q) = %v, want %v", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestTerminalEscrowStatusesHaveNoTransitions(t *testing.T) {
	terminal := []string{EscrowStatusCompleted, EscrowStatusRefunded, EscrowStatusRejected}
	for _, status := range terminal {
		transitions := ValidEscrowTransitions[status]
		if len(transitions) != 0 {
			t.Errorf("terminal status %q should have no transitions, got %v", status, transitions)
		}
	}
}

func TestEscrowStatusFromFlags(t *testing.T) {
	tests := []struct {
		name     string
		escrow   Escrow
		expected string
	}{
		{"fresh", Escrow{}, EscrowStatusCreated},
		{"buyer confirmed", Escrow{BuyerConfirmed: true}, EscrowStatusBuyerConfirmed},
		{"seller confirmed", Escrow{SellerConfirmed: true}, EscrowStatusSellerConfirmed},
		{"both confirmed and completed", Escrow{BuyerConfirmed: true, SellerConfirmed: true, Completed: true}, EscrowStatusCompleted},
		{"refunded wins over confirmations", Escrow{BuyerConfirmed: true, Refunded: true}, EscrowStatusRefunded},
		{"rejected wins over everything", Escrow{BuyerConfirmed: true, Refunded: true, Rejected: true}, EscrowStatusRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.escrow.Status(); got != tt.expected {
				t.Errorf("Status() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestEscrowPastDeadline(t *testing.T) {
	now := time.Now()

	open := Escrow{Deadline: now.Add(-time.Hour)}
	if !open.PastDeadline(now) {
		t.Error("open escrow past its deadline should report PastDeadline")
	}

	future := Escrow{Deadline: now.Add(time.Hour)}
	if future.PastDeadline(now) {
		t.Error("escrow before its deadline should not report PastDeadline")
	}

	done := Escrow{Deadline: now.Add(-time.Hour), Completed: true}
	if done.PastDeadline(now) {
		t.Error("terminal escrow should never report PastDeadline")
	}
}

// Package flow implements the ordering dialog as a state machine over a
// per-customer Session. It performs no I/O: every turn returns the replies
// to send and, when the customer confirms, the order to submit.
package flow

import (
	"time"

	"github.com/Ananth-NQI/orderbot/internal/delivery"
)

// Step is the dialog node a Session is waiting on.
type Step string

const (
	StepGreeting          Step = "greeting"
	StepCollectContact    Step = "collect_contact"
	StepSelectProducts    Step = "select_products"
	StepCollectQuantities Step = "collect_quantities"
	StepSelectDate        Step = "select_date"
	StepReviewSummary     Step = "review_summary"
	StepModifyMenu        Step = "modify_menu"
)

// Contact is who the order is for.
type Contact struct {
	Name  string
	Phone string
}

// Session is the in-progress dialog of one customer.
type Session struct {
	CustomerID string
	Step       Step
	Contact    Contact

	// SelectedProductIDs keeps the customer's order; a repeated id is
	// asked for (and billed) once per occurrence.
	SelectedProductIDs []string
	PendingIndex       int
	Lines              []OrderLine

	// DateOptions is the menu shown in the current date turn. The customer
	// answers with an ordinal, so it must not be recomputed until the next menu.
	DateOptions  []delivery.Option
	SelectedDate delivery.Option

	// Modifying is set while a sub-flow was entered from the modify menu, so
	// finishing it returns to the summary instead of moving forward.
	Modifying bool

	// OrderRef is assigned on the first submission attempt and reused on retries.
	OrderRef string

	CreatedAt  time.Time
	LastActive time.Time
}

// NewSession returns a session waiting at the greeting.
func NewSession(customerID string, now time.Time) *Session {
	return &Session{
		CustomerID: customerID,
		Step:       StepGreeting,
		CreatedAt:  now,
		LastActive: now,
	}
}

// QuantitiesComplete reports whether every selected product has a quantity.
func (s *Session) QuantitiesComplete() bool {
	return s.PendingIndex >= len(s.SelectedProductIDs)
}

// HasDate reports whether a delivery date has been chosen.
func (s *Session) HasDate() bool {
	return s.SelectedDate.ISO != ""
}

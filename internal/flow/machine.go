package flow

import (
	"time"

	"github.com/Ananth-NQI/orderbot/internal/catalog"
	"github.com/Ananth-NQI/orderbot/internal/delivery"
	"github.com/Ananth-NQI/orderbot/internal/models"
)

// DatePolicy enumerates the delivery dates offered on a given day.
type DatePolicy interface {
	Options(now time.Time) []delivery.Option
}

// Effects is what a turn asks the caller to do, in order: send Replies,
// then submit Submit (if set), then drop the session when Close is set.
type Effects struct {
	Replies []string
	Submit  *models.OrderSubmission
	Close   bool
}

func reply(msgs ...string) Effects {
	return Effects{Replies: msgs}
}

// Machine runs dialog turns against a Session.
type Machine struct {
	Catalog *catalog.Catalog
	Dates   DatePolicy
	Now     func() time.Time
	NewRef  func() string
}

func (m *Machine) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// Step consumes one inbound text and mutates s accordingly. Invalid input
// never changes the step: the customer gets a corrective reply instead.
func (m *Machine) Step(s *Session, text string) Effects {
	s.LastActive = m.now()
	t := Normalize(text)

	switch s.Step {
	case StepGreeting:
		s.Step = StepCollectContact
		return reply(welcomeMessage(m.Catalog.Business))

	case StepCollectContact:
		return m.collectContact(s, text)

	case StepSelectProducts:
		return m.selectProducts(s, t)

	case StepCollectQuantities:
		return m.collectQuantity(s, t)

	case StepSelectDate:
		return m.selectDate(s, t)

	case StepReviewSummary:
		return m.review(s, t)

	case StepModifyMenu:
		return m.modify(s, t)

	default:
		// Unknown step: start over rather than strand the customer.
		*s = *NewSession(s.CustomerID, m.now())
		s.Step = StepCollectContact
		return reply(welcomeMessage(m.Catalog.Business))
	}
}

// SubmissionResult finishes a turn that produced a Submit effect. On failure
// the session stays at the summary with its order intact so SI can retry.
func (m *Machine) SubmissionResult(s *Session, err error) Effects {
	if err != nil {
		return reply(submitFailedMessage())
	}
	return Effects{
		Replies: []string{confirmedMessage(s, m.Catalog)},
		Close:   true,
	}
}

func (m *Machine) collectContact(s *Session, raw string) Effects {
	c, ok := ParseContact(raw)
	if !ok {
		return reply(contactFormatError())
	}
	s.Contact = c

	if s.Modifying {
		return m.backToSummary(s)
	}
	s.Step = StepSelectProducts
	return reply(productMenu(m.Catalog))
}

func (m *Machine) selectProducts(s *Session, t string) Effects {
	ids := ParseProductIDs(t, m.Catalog)
	if len(ids) == 0 {
		return reply(productError(m.Catalog))
	}

	s.SelectedProductIDs = ids
	s.Lines = nil
	s.PendingIndex = 0
	s.Step = StepCollectQuantities

	p, _ := m.Catalog.Lookup(ids[0])
	return reply(quantityPrompt(p))
}

func (m *Machine) collectQuantity(s *Session, t string) Effects {
	if s.QuantitiesComplete() {
		return m.afterQuantities(s)
	}

	p, _ := m.Catalog.Lookup(s.SelectedProductIDs[s.PendingIndex])
	qty, ok := ParsePositive(t)
	if !ok {
		return reply(quantityError(p))
	}

	s.Lines = append(s.Lines, NewOrderLine(p, qty))
	s.PendingIndex++

	if !s.QuantitiesComplete() {
		next, _ := m.Catalog.Lookup(s.SelectedProductIDs[s.PendingIndex])
		return reply(quantityPrompt(next))
	}
	return m.afterQuantities(s)
}

func (m *Machine) afterQuantities(s *Session) Effects {
	if s.Modifying && s.HasDate() {
		return m.backToSummary(s)
	}
	return m.offerDates(s)
}

func (m *Machine) offerDates(s *Session) Effects {
	s.DateOptions = m.Dates.Options(m.now())
	s.Step = StepSelectDate
	return reply(dateMenu(s.DateOptions))
}

func (m *Machine) selectDate(s *Session, t string) Effects {
	i, ok := ParseOrdinal(t, len(s.DateOptions))
	if !ok {
		return reply(dateError(len(s.DateOptions)))
	}
	s.SelectedDate = s.DateOptions[i]
	return m.backToSummary(s)
}

func (m *Machine) backToSummary(s *Session) Effects {
	s.Modifying = false
	s.Step = StepReviewSummary
	return reply(summaryMessage(s, m.Catalog))
}

func (m *Machine) review(s *Session, t string) Effects {
	switch t {
	case KeywordConfirm:
		if s.OrderRef == "" && m.NewRef != nil {
			s.OrderRef = m.NewRef()
		}
		sub := Submission(s, m.Catalog)
		return Effects{Submit: &sub}

	case KeywordModify:
		s.Step = StepModifyMenu
		return reply(modifyMenu())

	case KeywordCancel:
		return Effects{Replies: []string{cancelledMessage()}, Close: true}

	default:
		return reply(summaryHint())
	}
}

func (m *Machine) modify(s *Session, t string) Effects {
	switch t {
	case "1":
		s.Modifying = true
		s.Step = StepSelectProducts
		return reply(productMenu(m.Catalog))

	case "2":
		s.Modifying = true
		return m.offerDates(s)

	case "3":
		s.Modifying = true
		s.Step = StepCollectContact
		return reply(contactPrompt())

	case "4":
		return Effects{Replies: []string{cancelledMessage()}, Close: true}
	}

	if isDigits(t) {
		return reply(modifyError())
	}
	return Effects{Replies: []string{cancelledMessage()}, Close: true}
}

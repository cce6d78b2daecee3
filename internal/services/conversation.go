package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ananth-NQI/orderbot/internal/apperr"
	"github.com/Ananth-NQI/orderbot/internal/flow"
	"github.com/Ananth-NQI/orderbot/internal/log"
	"github.com/Ananth-NQI/orderbot/internal/metrics"
	"github.com/Ananth-NQI/orderbot/internal/models"
)

// expiryNoticeTimeout bounds the send made from an inactivity timer, which
// has no request context of its own.
const expiryNoticeTimeout = 15 * time.Second

// InboundMessage is one customer text, already extracted from a transport payload.
type InboundMessage struct {
	ID         string
	CustomerID string
	Text       string
}

// ConversationOptions holds the collaborators of a ConversationService.
type ConversationOptions struct {
	Machine     *flow.Machine
	Sender      Sender
	Sink        OrderSink
	Dedup       Deduplicator
	IdleTimeout time.Duration
	SinkTimeout time.Duration
}

// ConversationService runs one dialog turn per inbound message. Turns for
// the same customer are serialized through the session lease, including the
// order submission.
type ConversationService struct {
	machine     *flow.Machine
	sender      Sender
	sink        OrderSink
	dedup       Deduplicator
	sinkTimeout time.Duration
	sessions    *SessionManager
	logger      zerolog.Logger
}

// NewConversationService wires a conversation service and its session manager.
func NewConversationService(opts ConversationOptions) *ConversationService {
	c := &ConversationService{
		machine:     opts.Machine,
		sender:      opts.Sender,
		sink:        opts.Sink,
		dedup:       opts.Dedup,
		sinkTimeout: opts.SinkTimeout,
		logger:      log.WithComponent("conversation"),
	}
	c.sessions = NewSessionManager(opts.IdleTimeout, c.notifyExpired)
	return c
}

// Sessions exposes the session manager for status reporting.
func (c *ConversationService) Sessions() *SessionManager {
	return c.sessions
}

// Close stops every pending inactivity timer.
func (c *ConversationService) Close() {
	c.sessions.Close()
}

// HandleInbound processes msg and returns the replies that were produced, in
// order. Duplicates and empty messages produce no replies. Send failures are
// logged and do not fail the turn.
func (c *ConversationService) HandleInbound(ctx context.Context, msg InboundMessage) ([]string, error) {
	if msg.ID == "" || msg.CustomerID == "" || strings.TrimSpace(msg.Text) == "" {
		metrics.InboundMessagesTotal.WithLabelValues("ignored").Inc()
		return nil, fmt.Errorf("inbound message: %w", apperr.ErrInvalidPayload)
	}

	if c.dedup != nil && !c.dedup.ShouldProcess(ctx, msg.ID) {
		metrics.InboundMessagesTotal.WithLabelValues("duplicate").Inc()
		c.logger.Debug().Str("message_id", msg.ID).Msg("duplicate delivery suppressed")
		return nil, nil
	}
	metrics.InboundMessagesTotal.WithLabelValues("processed").Inc()

	lease := c.sessions.Acquire(msg.CustomerID)
	defer lease.Release()

	var session *flow.Session
	if flow.IsResetKeyword(msg.Text) {
		session = lease.Reset()
	} else {
		session, _ = lease.GetOrCreate()
	}
	lease.Touch()

	metrics.DialogTurnsTotal.WithLabelValues(string(session.Step)).Inc()
	effects := c.machine.Step(session, msg.Text)
	replies := c.send(ctx, msg.CustomerID, effects.Replies)

	if effects.Submit != nil {
		err := c.submit(ctx, effects.Submit)
		effects = c.machine.SubmissionResult(session, err)
		replies = append(replies, c.send(ctx, msg.CustomerID, effects.Replies)...)
		if err == nil {
			metrics.SessionsClosedTotal.WithLabelValues("confirmed").Inc()
		}
	} else if effects.Close {
		metrics.SessionsClosedTotal.WithLabelValues("cancelled").Inc()
	}

	if effects.Close {
		lease.Delete()
	}
	return replies, nil
}

func (c *ConversationService) submit(ctx context.Context, order *models.OrderSubmission) error {
	ctx, cancel := context.WithTimeout(ctx, c.sinkTimeout)
	defer cancel()

	start := time.Now()
	err := c.sink.Submit(ctx, *order)
	event := c.logger.Info()
	result := "ok"
	if err != nil {
		result = apperr.Kind(err)
		event = c.logger.Warn().Err(err)
	}
	metrics.OrderSubmissionsTotal.WithLabelValues(result).Inc()
	event.
		Str("reference", order.Reference).
		Str("customer", order.CustomerID).
		Int64("total", order.Total).
		Dur("elapsed", time.Since(start)).
		Msg("order submission")
	return err
}

func (c *ConversationService) send(ctx context.Context, to string, texts []string) []string {
	for _, text := range texts {
		if err := c.sender.Send(ctx, to, text); err != nil {
			metrics.OutboundFailuresTotal.Inc()
			c.logger.Error().Err(err).Str("customer", to).Msg("failed to send reply")
		}
	}
	return texts
}

// notifyExpired runs under the customer's lease after the session was dropped.
func (c *ConversationService) notifyExpired(session *flow.Session) {
	metrics.SessionsClosedTotal.WithLabelValues("expired").Inc()

	ctx, cancel := context.WithTimeout(context.Background(), expiryNoticeTimeout)
	defer cancel()
	c.send(ctx, session.CustomerID, []string{flow.SessionExpiredMessage()})
}

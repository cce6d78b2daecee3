package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Ananth-NQI/orderbot/internal/apperr"
	"github.com/Ananth-NQI/orderbot/internal/log"
	"github.com/Ananth-NQI/orderbot/internal/models"
	"github.com/Ananth-NQI/orderbot/internal/storage"
)

// OrderSink accepts a finalized order. Implementations must tolerate the
// same Reference being submitted again after a failure.
type OrderSink interface {
	Submit(ctx context.Context, order models.OrderSubmission) error
}

// HTTPSink posts orders as JSON to a spreadsheet web-app endpoint.
type HTTPSink struct {
	url     string
	timeout time.Duration
	logger  zerolog.Logger
}

// NewHTTPSink creates a sink posting to url with the given request timeout.
func NewHTTPSink(url string, timeout time.Duration) *HTTPSink {
	return &HTTPSink{
		url:     url,
		timeout: timeout,
		logger:  log.WithComponent("sheet_sink"),
	}
}

// sheetOrder is the row layout the spreadsheet script expects.
type sheetOrder struct {
	Referencia   string `json:"referencia"`
	Nombre       string `json:"nombre"`
	Telefono     string `json:"telefono"`
	WhatsApp     string `json:"whatsapp"`
	Productos    string `json:"productos"`
	Cantidades   string `json:"cantidades"`
	Total        int64  `json:"total"`
	FechaEntrega string `json:"fechaEntrega"`
}

func (h *HTTPSink) Submit(ctx context.Context, order models.OrderSubmission) error {
	timeout, err := boundedTimeout(ctx, h.timeout)
	if err != nil {
		return err
	}

	agent := fiber.Post(h.url)
	agent.JSON(sheetOrder{
		Referencia:   order.Reference,
		Nombre:       order.ContactName,
		Telefono:     order.ContactPhone,
		WhatsApp:     order.CustomerID,
		Productos:    order.LineItemsSummary,
		Cantidades:   order.QuantitiesSummary,
		Total:        order.Total,
		FechaEntrega: order.DeliveryDate,
	})
	agent.Timeout(timeout)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("post order %s: %w: %w", order.Reference, apperr.ErrSinkUnavailable, errors.Join(errs...))
	}
	// Apps Script web apps run the script and then answer with a redirect
	// to the result page, so 3xx counts as accepted.
	switch {
	case code >= fiber.StatusInternalServerError || code == fiber.StatusTooManyRequests:
		return fmt.Errorf("post order %s: %w: status %d", order.Reference, apperr.ErrSinkUnavailable, code)
	case code < fiber.StatusOK || code >= fiber.StatusBadRequest:
		return fmt.Errorf("post order %s: %w: status %d: %s", order.Reference, apperr.ErrSinkRejected, code, truncate(string(body), 200))
	}

	h.logger.Info().Str("reference", order.Reference).Int("status", code).Msg("order posted to sheet")
	return nil
}

// StoreSink archives orders in an OrderStore.
type StoreSink struct {
	store storage.OrderStore
	now   func() time.Time
}

// NewStoreSink creates a sink writing to store.
func NewStoreSink(store storage.OrderStore) *StoreSink {
	return &StoreSink{store: store, now: time.Now}
}

func (s *StoreSink) Submit(ctx context.Context, order models.OrderSubmission) error {
	if err := s.store.SaveOrder(ctx, order.ToOrder(s.now())); err != nil {
		return fmt.Errorf("archive order %s: %w", order.Reference, err)
	}
	return nil
}

// MultiSink submits to every sink in order and fails on the first error.
// Earlier sinks may then see the order again on retry.
type MultiSink []OrderSink

func (m MultiSink) Submit(ctx context.Context, order models.OrderSubmission) error {
	for _, s := range m {
		if err := s.Submit(ctx, order); err != nil {
			return err
		}
	}
	return nil
}

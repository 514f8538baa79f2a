package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quantdesk/terminal/internal/clients/platform"
	"github.com/quantdesk/terminal/internal/events"
)

// ErrSubmissionInFlight is returned when a submit arrives while a previous
// one has not resolved yet. Placing an order is a financial transaction;
// a second concurrent attempt risks a duplicate.
var ErrSubmissionInFlight = errors.New("a submission is already in flight")

// Submitter posts a validated payload to the backend route for its type.
type Submitter interface {
	SubmitAdvancedOrder(ctx context.Context, route string, payload map[string]interface{}) (*platform.SubmittedOrder, error)
}

// Recorder persists the audit record of an accepted submission.
type Recorder interface {
	Create(order SubmittedOrder) error
}

// SubmitResult is what the form receives back after a submit attempt.
type SubmitResult struct {
	Validation ValidationResult
	ClientRef  string
	OrderID    string
	Draft      Draft // reset draft on success (symbol kept)
}

// Service is the submission adapter: it gates the backend call behind a
// final validation pass, enforces one in-flight submission per form, and
// records accepted orders.
type Service struct {
	client   Submitter
	registry *Registry
	repo     Recorder
	bus      *events.Bus
	userID   string
	log      zerolog.Logger

	mu       sync.Mutex
	inFlight bool
}

// NewService creates a new order submission service. repo and bus may be nil.
func NewService(client Submitter, registry *Registry, repo Recorder, bus *events.Bus, userID string, log zerolog.Logger) *Service {
	return &Service{
		client:   client,
		registry: registry,
		repo:     repo,
		bus:      bus,
		userID:   userID,
		log:      log.With().Str("service", "orders").Logger(),
	}
}

// Registry exposes the order-type registry backing this service.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Validate runs the pure validator against the loaded registry. A type the
// registry does not carry cannot be selected in the form, so it fails here
// too even when the rule engine knows it.
func (s *Service) Validate(orderType string, draft Draft, currentPrice float64) ValidationResult {
	if orderType != "" && s.registry.Len() > 0 {
		if _, ok := s.registry.Get(orderType); !ok {
			return Invalid("unknown order type: " + orderType)
		}
	}
	return Validate(orderType, draft, currentPrice)
}

// Submit validates the draft and, when valid, posts it to the backend.
// Exactly one attempt: no retry on failure. A success resets the draft's
// mutable fields, keeping the symbol.
func (s *Service) Submit(ctx context.Context, orderType string, draft Draft, currentPrice float64) (*SubmitResult, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	s.inFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	validation := s.Validate(orderType, draft, currentPrice)
	if !validation.Valid {
		// Validation failures never reach the backend.
		return &SubmitResult{Validation: validation, Draft: draft}, nil
	}

	route, ok := Route(orderType)
	if !ok {
		return nil, fmt.Errorf("no submission route for order type %s", orderType)
	}

	clientRef := uuid.New().String()
	body := s.buildBody(clientRef, validation.Payload)

	submitted, err := s.client.SubmitAdvancedOrder(ctx, route, body)
	if err != nil {
		s.log.Warn().Err(err).
			Str("order_type", orderType).
			Str("symbol", draft.Symbol).
			Msg("Order submission rejected")
		if s.bus != nil {
			s.bus.Emit(events.OrderRejected, "orders", map[string]interface{}{
				"order_type": orderType,
				"symbol":     draft.Symbol,
				"error":      err.Error(),
			})
		}
		return nil, err
	}

	s.record(clientRef, validation.Payload, body, submitted)

	if s.bus != nil {
		s.bus.EmitTyped(events.OrderSubmitted, "orders", events.OrderSubmittedData{
			ClientRef: clientRef,
			OrderType: orderType,
			Symbol:    validation.Payload.Symbol,
			Quantity:  validation.Payload.Quantity,
		})
	}

	s.log.Info().
		Str("order_type", orderType).
		Str("symbol", validation.Payload.Symbol).
		Str("order_id", submitted.OrderID).
		Msg("Order submitted")

	return &SubmitResult{
		Validation: validation,
		ClientRef:  clientRef,
		OrderID:    submitted.OrderID,
		Draft:      draft.Reset(),
	}, nil
}

// buildBody assembles the wire body: common fields plus the normalized
// type-specific ones.
func (s *Service) buildBody(clientRef string, payload *Payload) map[string]interface{} {
	body := map[string]interface{}{
		"user_id":    s.userID,
		"client_ref": clientRef,
		"symbol":     payload.Symbol,
		"quantity":   payload.Quantity,
		"message":    payload.Message,
	}
	if payload.Side != "" {
		body["side"] = string(payload.Side)
	}
	for key, value := range payload.Fields {
		body[key] = value
	}
	return body
}

// record writes the audit row. Failure is logged, not returned: the order
// is already placed and must not look failed to the user.
func (s *Service) record(clientRef string, payload *Payload, body map[string]interface{}, submitted *platform.SubmittedOrder) {
	if s.repo == nil {
		return
	}

	err := s.repo.Create(SubmittedOrder{
		ClientRef:      clientRef,
		OrderType:      payload.OrderType,
		Symbol:         payload.Symbol,
		Side:           payload.Side,
		Quantity:       payload.Quantity,
		Payload:        marshalPayload(body),
		BackendOrderID: submitted.OrderID,
		SubmittedAt:    time.Now(),
	})
	if err != nil {
		s.log.Error().Err(err).Str("client_ref", clientRef).Msg("Failed to record submitted order")
	}
}

package payment

import (
	"context"
	"fmt"
	"sync"

	"bakehouse/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Simulator is an in-process payment provider for local development and
// tests. It honours idempotency keys the way the live provider does and
// declines any intent sized to DeclineAmountCents.
type Simulator struct {
	// DeclineAmountCents, when non-zero, causes confirmation of intents
	// at exactly this amount to be declined.
	DeclineAmountCents int64

	mu       sync.Mutex
	byKey    map[string]*Intent
	intents  map[string]*Intent
	declined map[string]bool
	logger   zerolog.Logger
}

// NewSimulator creates a simulated payment provider.
func NewSimulator(logger zerolog.Logger) *Simulator {
	return &Simulator{
		byKey:    make(map[string]*Intent),
		intents:  make(map[string]*Intent),
		declined: make(map[string]bool),
		logger:   logger.With().Str("component", "payment-simulator").Logger(),
	}
}

// CreateIntent creates a simulated intent. A repeated idempotency key
// returns the previously created intent.
func (s *Simulator) CreateIntent(ctx context.Context, req CreateIntentRequest) (*Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.IdempotencyKey != "" {
		if existing, ok := s.byKey[req.IdempotencyKey]; ok {
			return existing, nil
		}
	}

	id := "pi_sim_" + uuid.NewString()
	intent := &Intent{
		ID:           id,
		ClientSecret: id + "_secret_" + uuid.NewString(),
		AmountCents:  req.AmountCents,
		Currency:     req.Currency,
		Metadata:     req.Metadata,
	}

	s.intents[id] = intent
	if req.IdempotencyKey != "" {
		s.byKey[req.IdempotencyKey] = intent
	}

	s.logger.Debug().
		Str("intent_id", id).
		Int64("amount_cents", req.AmountCents).
		Msg("simulated intent created")

	return intent, nil
}

// ConfirmIntent confirms a simulated intent.
func (s *Simulator) ConfirmIntent(ctx context.Context, intentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	intent, ok := s.intents[intentID]
	if !ok {
		return model.NewDomainError(model.ErrCodePaymentFailed,
			fmt.Sprintf("no such payment intent: %s", intentID))
	}

	if s.DeclineAmountCents != 0 && intent.AmountCents == s.DeclineAmountCents {
		s.declined[intentID] = true
		return model.NewDomainError(model.ErrCodePaymentFailed, "card declined: insufficient funds")
	}

	return nil
}

// CreatedCount reports how many distinct intents have been created.
// Used by tests to assert idempotent issuance.
func (s *Simulator) CreatedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.intents)
}

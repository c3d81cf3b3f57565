package pricing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"

	"bakehouse/internal/payment"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// orderCodePrefix is the short human-readable prefix on receipt codes.
const orderCodePrefix = "WNB"

// issuedCacheLimit bounds the per-process idempotency cache.
const issuedCacheLimit = 1024

// Issued pairs a verified quote with the payment intent created for it.
type Issued struct {
	Intent    *payment.Intent
	Quote     Quote
	OrderCode string
}

// Issuer verifies a cart snapshot and creates a payment intent sized to
// the authoritative total.
//
// Issuance is idempotent per (cart snapshot, attempt): repeated calls
// with the same lines and attempt ID return the already-created intent
// instead of minting a redundant charge target. Concurrent duplicates
// are collapsed with singleflight.
type Issuer struct {
	verifier *Verifier
	provider payment.Provider
	currency string
	logger   zerolog.Logger

	sfg    singleflight.Group
	mu     sync.Mutex
	issued map[string]*Issued
	order  []string
}

// NewIssuer creates a new intent issuer.
func NewIssuer(verifier *Verifier, provider payment.Provider, currency string, logger zerolog.Logger) *Issuer {
	return &Issuer{
		verifier: verifier,
		provider: provider,
		currency: currency,
		logger:   logger.With().Str("component", "intent-issuer").Logger(),
		issued:   make(map[string]*Issued),
	}
}

// IdempotencyKey derives the key tying a cart snapshot and checkout
// attempt to a single payment intent.
func IdempotencyKey(lines []Line, attemptID string) string {
	h := sha256.New()
	for _, line := range lines {
		fmt.Fprintf(h, "%s|%s|%d\n", line.ProductID, line.Size, line.Quantity)
	}
	h.Write([]byte(attemptID))
	return hex.EncodeToString(h.Sum(nil))
}

// NewOrderCode generates a short human-readable order reference
// (prefix plus 4 digits). Display-only; the authoritative order ID is
// assigned when the order is created.
func NewOrderCode() string {
	return fmt.Sprintf("%s-%d", orderCodePrefix, 1000+rand.IntN(9000))
}

// Issue verifies the lines and returns a payment intent for the total.
// attemptID scopes idempotency to one checkout attempt. Callers that
// have no attempt get a server-minted one, so identical carts from
// different customers never share an intent.
func (i *Issuer) Issue(ctx context.Context, lines []Line, attemptID string) (*Issued, error) {
	if attemptID == "" {
		attemptID = uuid.NewString()
	}
	key := IdempotencyKey(lines, attemptID)

	v, err, _ := i.sfg.Do(key, func() (interface{}, error) {
		i.mu.Lock()
		if cached, ok := i.issued[key]; ok {
			i.mu.Unlock()
			return cached, nil
		}
		i.mu.Unlock()

		quote, err := i.verifier.Verify(ctx, lines)
		if err != nil {
			return nil, err
		}

		code := NewOrderCode()
		amountCents := quote.Totals.Total.Shift(2).IntPart()

		intent, err := i.provider.CreateIntent(ctx, payment.CreateIntentRequest{
			AmountCents:    amountCents,
			Currency:       i.currency,
			IdempotencyKey: key,
			Metadata: map[string]string{
				"order_id":    code,
				"subtotal":    quote.Totals.Subtotal.StringFixed(2),
				"tax":         quote.Totals.Tax.StringFixed(2),
				"total":       quote.Totals.Total.StringFixed(2),
				"items_count": strconv.Itoa(quote.ItemCount),
			},
		})
		if err != nil {
			return nil, err
		}

		result := &Issued{
			Intent:    intent,
			Quote:     *quote,
			OrderCode: code,
		}

		i.mu.Lock()
		i.issued[key] = result
		i.order = append(i.order, key)
		for len(i.order) > issuedCacheLimit {
			delete(i.issued, i.order[0])
			i.order = i.order[1:]
		}
		i.mu.Unlock()

		i.logger.Info().
			Str("order_code", code).
			Str("total", quote.Totals.Total.StringFixed(2)).
			Int("item_count", quote.ItemCount).
			Msg("payment intent issued")

		return result, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Issued), nil
}

// Invalidate drops the cached intent for a cart snapshot and attempt,
// forcing the next Issue to create a fresh one. Called when cart
// contents change mid-checkout.
func (i *Issuer) Invalidate(lines []Line, attemptID string) {
	key := IdempotencyKey(lines, attemptID)
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.issued[key]; !ok {
		return
	}
	delete(i.issued, key)
	for idx, k := range i.order {
		if k == key {
			i.order = append(i.order[:idx], i.order[idx+1:]...)
			break
		}
	}
}

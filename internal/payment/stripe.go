package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bakehouse/internal/model"

	"github.com/rs/zerolog"
)

const defaultStripeBaseURL = "https://api.stripe.com"

// StripeClient implements Provider against the Stripe REST API using
// form-encoded requests. No SDK is used; the two calls the flow needs
// (create and confirm) are plain POSTs.
type StripeClient struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewStripeClient creates a Stripe-backed payment provider.
func NewStripeClient(secretKey string, logger zerolog.Logger) *StripeClient {
	return &StripeClient{
		secretKey:  secretKey,
		baseURL:    defaultStripeBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.With().Str("component", "stripe").Logger(),
	}
}

// NewStripeClientWithBaseURL is used by tests to point the client at a
// local test server.
func NewStripeClientWithBaseURL(secretKey, baseURL string, logger zerolog.Logger) *StripeClient {
	c := NewStripeClient(secretKey, logger)
	c.baseURL = baseURL
	return c
}

type stripeIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

type stripeError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// CreateIntent creates a payment intent via POST /v1/payment_intents.
func (c *StripeClient) CreateIntent(ctx context.Context, req CreateIntentRequest) (*Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.AmountCents, 10))
	form.Set("currency", req.Currency)
	form.Set("automatic_payment_methods[enabled]", "true")
	for k, v := range req.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var intent stripeIntent
	if err := c.post(ctx, "/v1/payment_intents", form, req.IdempotencyKey, &intent); err != nil {
		return nil, err
	}

	c.logger.Info().
		Str("intent_id", intent.ID).
		Int64("amount_cents", intent.Amount).
		Str("currency", intent.Currency).
		Msg("payment intent created")

	return &Intent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		AmountCents:  intent.Amount,
		Currency:     intent.Currency,
		Metadata:     req.Metadata,
	}, nil
}

// ConfirmIntent confirms a payment intent via POST /v1/payment_intents/{id}/confirm.
func (c *StripeClient) ConfirmIntent(ctx context.Context, intentID string) error {
	var intent stripeIntent
	path := fmt.Sprintf("/v1/payment_intents/%s/confirm", url.PathEscape(intentID))
	if err := c.post(ctx, path, url.Values{}, "", &intent); err != nil {
		return err
	}

	if intent.Status != "succeeded" && intent.Status != "processing" {
		c.logger.Warn().
			Str("intent_id", intentID).
			Str("status", intent.Status).
			Msg("payment confirmation did not succeed")
		return model.NewDomainError(model.ErrCodePaymentFailed,
			fmt.Sprintf("payment not completed (status %s)", intent.Status))
	}

	c.logger.Info().Str("intent_id", intentID).Msg("payment confirmed")
	return nil
}

func (c *StripeClient) post(ctx context.Context, path string, form url.Values, idempotencyKey string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build stripe request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("stripe request failed")
		return model.NewDomainError(model.ErrCodePaymentFailed, "payment provider unreachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read stripe response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr stripeError
		message := "payment provider error"
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			message = apiErr.Error.Message
		}
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("path", path).
			Str("message", message).
			Msg("stripe API error")
		return model.NewDomainError(model.ErrCodePaymentFailed, message)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode stripe response: %w", err)
	}
	return nil
}

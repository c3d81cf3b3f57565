package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bakehouse/internal/catalog"
	"bakehouse/internal/model"
	"bakehouse/internal/payment"
	"bakehouse/internal/pricing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIssuer(t *testing.T) (*pricing.Issuer, *payment.Simulator) {
	t.Helper()
	logger := zerolog.Nop()

	menu := model.Menu{
		Categories: []model.MenuCategory{
			{ID: "coffee", Name: "Koffie", Items: []model.MenuItem{
				{ID: "espresso", Name: "Espresso", Price: "€2.50"},
			}},
		},
	}
	holder := catalog.NewHolder(catalog.New(menu))
	sim := payment.NewSimulator(logger)
	verifier := pricing.NewVerifier(holder, logger)
	return pricing.NewIssuer(verifier, sim, "eur", logger), sim
}

func postIntent(t *testing.T, h *PaymentIntentHandler, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, "/api/create-payment-intent", &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.Create(w, req)
	return w
}

func TestPaymentIntentHandler_Create(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("success", func(t *testing.T) {
		issuer, _ := testIssuer(t)
		h := NewPaymentIntentHandler(issuer, logger)

		w := postIntent(t, h, model.PaymentIntentRequest{
			Items: []model.PaymentIntentItem{
				{ProductID: "espresso", Quantity: 2},
			},
		}, nil)

		require.Equal(t, http.StatusOK, w.Code)

		var resp model.PaymentIntentResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.ClientSecret)
		assert.Contains(t, resp.OrderID, "WNB-")
		assert.Equal(t, "5.45", resp.CalculatedTotal)
	})

	t.Run("legacy client sends line id only", func(t *testing.T) {
		issuer, _ := testIssuer(t)
		h := NewPaymentIntentHandler(issuer, logger)

		w := postIntent(t, h, model.PaymentIntentRequest{
			Items: []model.PaymentIntentItem{
				{ID: "espresso", Quantity: 1},
			},
		}, nil)

		require.Equal(t, http.StatusOK, w.Code)

		var resp model.PaymentIntentResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "2.73", resp.CalculatedTotal)
	})

	t.Run("empty cart", func(t *testing.T) {
		issuer, _ := testIssuer(t)
		h := NewPaymentIntentHandler(issuer, logger)

		w := postIntent(t, h, model.PaymentIntentRequest{}, nil)

		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp model.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Cart is empty", resp.Error)
	})

	t.Run("invalid size variant", func(t *testing.T) {
		issuer, _ := testIssuer(t)
		h := NewPaymentIntentHandler(issuer, logger)

		w := postIntent(t, h, model.PaymentIntentRequest{
			Items: []model.PaymentIntentItem{
				{ProductID: "espresso", Size: "venti", Quantity: 1},
			},
		}, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid quantity", func(t *testing.T) {
		issuer, _ := testIssuer(t)
		h := NewPaymentIntentHandler(issuer, logger)

		w := postIntent(t, h, model.PaymentIntentRequest{
			Items: []model.PaymentIntentItem{
				{ProductID: "espresso", Quantity: -1},
			},
		}, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown products only falls below minimum", func(t *testing.T) {
		issuer, _ := testIssuer(t)
		h := NewPaymentIntentHandler(issuer, logger)

		w := postIntent(t, h, model.PaymentIntentRequest{
			Items: []model.PaymentIntentItem{
				{ProductID: "ghost", Quantity: 1},
			},
		}, nil)

		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp model.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Amount too low", resp.Error)
	})

	t.Run("malformed body", func(t *testing.T) {
		issuer, _ := testIssuer(t)
		h := NewPaymentIntentHandler(issuer, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/create-payment-intent", bytes.NewBufferString("{not json"))
		w := httptest.NewRecorder()
		h.Create(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		issuer, _ := testIssuer(t)
		h := NewPaymentIntentHandler(issuer, logger)

		req := httptest.NewRequest(http.MethodGet, "/api/create-payment-intent", nil)
		w := httptest.NewRecorder()
		h.Create(w, req)

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})

	t.Run("repeated attempt reuses intent", func(t *testing.T) {
		issuer, sim := testIssuer(t)
		h := NewPaymentIntentHandler(issuer, logger)
		body := model.PaymentIntentRequest{
			Items: []model.PaymentIntentItem{
				{ProductID: "espresso", Quantity: 2},
			},
		}
		headers := map[string]string{"X-Checkout-Attempt": "attempt-1"}

		first := postIntent(t, h, body, headers)
		second := postIntent(t, h, body, headers)

		require.Equal(t, http.StatusOK, first.Code)
		require.Equal(t, http.StatusOK, second.Code)
		assert.Equal(t, 1, sim.CreatedCount())

		var a, b model.PaymentIntentResponse
		require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
		require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
		assert.Equal(t, a.ClientSecret, b.ClientSecret)
		assert.Equal(t, a.OrderID, b.OrderID)
	})

	t.Run("requests without attempt header get separate intents", func(t *testing.T) {
		issuer, sim := testIssuer(t)
		h := NewPaymentIntentHandler(issuer, logger)
		body := model.PaymentIntentRequest{
			Items: []model.PaymentIntentItem{
				{ProductID: "espresso", Quantity: 2},
			},
		}

		first := postIntent(t, h, body, nil)
		second := postIntent(t, h, body, nil)

		require.Equal(t, http.StatusOK, first.Code)
		require.Equal(t, http.StatusOK, second.Code)
		assert.Equal(t, 2, sim.CreatedCount())

		var a, b model.PaymentIntentResponse
		require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
		require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
		assert.NotEqual(t, a.ClientSecret, b.ClientSecret)
	})
}

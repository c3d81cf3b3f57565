package notify

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"bakehouse/internal/model"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/shopspring/decimal"
)

const receiptSubject = "Bevestiging bestelling Wake n Bake"

var receiptTemplate = template.Must(template.New("receipt").Parse(
	`Beste {{.CustomerName}},

Bedankt voor je bestelling bij Wake n Bake!

Bestelnummer: {{.OrderCode}}
Ophaaltijd:   {{.PickupLabel}}

Je bestelling:
{{range .Items}}  {{.Quantity}}x {{.Name}}{{if .Size}} ({{.Size}}){{end}} - €{{.LineTotal}}
{{end}}
Subtotaal: €{{.Subtotal}}
BTW (9%):  €{{.Tax}}
Totaal:    €{{.Total}}

Tot snel!
Wake n Bake
`))

type receiptLine struct {
	Quantity  int
	Name      string
	Size      model.Size
	LineTotal string
}

type receiptData struct {
	CustomerName string
	OrderCode    string
	PickupLabel  string
	Items        []receiptLine
	Subtotal     string
	Tax          string
	Total        string
}

// SendGridNotifier sends order confirmations via SendGrid.
type SendGridNotifier struct {
	apiKey      string
	fromAddress string
	fromName    string
	logger      zerolog.Logger
}

// NewSendGridNotifier creates a SendGrid-backed notifier.
func NewSendGridNotifier(apiKey, fromAddress, fromName string, logger zerolog.Logger) *SendGridNotifier {
	return &SendGridNotifier{
		apiKey:      apiKey,
		fromAddress: fromAddress,
		fromName:    fromName,
		logger:      logger.With().Str("component", "sendgrid-notifier").Logger(),
	}
}

// SendReceipt renders and sends the confirmation email.
func (n *SendGridNotifier) SendReceipt(ctx context.Context, receipt Receipt) error {
	if receipt.Email == "" {
		return model.NewDomainError(model.ErrCodeNotification, "recipient email is empty")
	}

	body, err := RenderReceipt(receipt)
	if err != nil {
		return fmt.Errorf("failed to render receipt: %w", err)
	}

	from := mail.NewEmail(n.fromName, n.fromAddress)
	to := mail.NewEmail(receipt.CustomerName, receipt.Email)
	message := mail.NewSingleEmail(from, receiptSubject, to, body,
		"<pre>"+body+"</pre>")

	client := sendgrid.NewSendClient(n.apiKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		n.logger.Error().Err(err).Str("email", receipt.Email).Msg("sendgrid send failed")
		return fmt.Errorf("sendgrid send error: %w", err)
	}

	if response.StatusCode >= 400 {
		n.logger.Error().
			Int("status", response.StatusCode).
			Str("email", receipt.Email).
			Str("body", response.Body).
			Msg("sendgrid rejected message")
		return model.NewDomainError(model.ErrCodeNotification,
			fmt.Sprintf("sendgrid send failed: status=%d", response.StatusCode))
	}

	n.logger.Info().
		Str("email", receipt.Email).
		Str("order_code", receipt.OrderCode).
		Int("status", response.StatusCode).
		Msg("receipt sent")

	return nil
}

// RenderReceipt renders the plain-text receipt body.
func RenderReceipt(receipt Receipt) (string, error) {
	data := receiptData{
		CustomerName: receipt.CustomerName,
		OrderCode:    receipt.OrderCode,
		PickupLabel:  receipt.PickupTime.Format("15:04"),
		Subtotal:     receipt.Totals.Subtotal.StringFixed(2),
		Tax:          receipt.Totals.Tax.StringFixed(2),
		Total:        receipt.Totals.Total.StringFixed(2),
	}
	if data.CustomerName == "" {
		data.CustomerName = "Klant"
	}

	for _, item := range receipt.Items {
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).StringFixed(2)
		data.Items = append(data.Items, receiptLine{
			Quantity:  item.Quantity,
			Name:      item.Name,
			Size:      item.Size,
			LineTotal: lineTotal,
		})
	}

	var sb strings.Builder
	if err := receiptTemplate.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

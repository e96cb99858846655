package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Notification carries the alert context handed to a notifier.
type Notification struct {
	Email        string
	ProductName  string
	ProductURL   string
	CurrentPrice decimal.Decimal
	TargetPrice  decimal.Decimal
	AllTimeLow   decimal.Decimal
}

// Notifier delivers price-alert notifications.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// EmailNotifier pushes alerts through a transactional mail HTTP API.
type EmailNotifier struct {
	apiKey      string
	fromAddress string
	fromName    string
	baseURL     string
	client      *http.Client
	logger      zerolog.Logger
}

// NewEmailNotifier constructs an email notifier.
func NewEmailNotifier(apiKey, fromAddress, fromName, baseURL string, timeout time.Duration, logger zerolog.Logger) *EmailNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.resend.com"
	}

	return &EmailNotifier{
		apiKey:      apiKey,
		fromAddress: fromAddress,
		fromName:    fromName,
		baseURL:     strings.TrimRight(baseURL, "/"),
		client:      &http.Client{Timeout: timeout},
		logger:      logger.With().Str("component", "alert_email").Logger(),
	}
}

type emailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Notify posts a formatted price-drop email to the mail API.
func (n *EmailNotifier) Notify(ctx context.Context, note Notification) error {
	payload := emailRequest{
		From:    fmt.Sprintf("%s <%s>", n.fromName, n.fromAddress),
		To:      []string{note.Email},
		Subject: fmt.Sprintf("Price drop: %s", note.ProductName),
		HTML:    renderEmailBody(note),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	url := n.baseURL + "/emails"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.apiKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mail api returned status %d", resp.StatusCode)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil && result.ID == "" {
		return fmt.Errorf("mail api accepted request without a message id")
	}

	n.logger.Info().
		Str("product", note.ProductName).
		Str("current_price", note.CurrentPrice.StringFixed(2)).
		Msg("price alert dispatched")
	return nil
}

func renderEmailBody(note Notification) string {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("<h2>%s is now %s</h2>", note.ProductName, note.CurrentPrice.StringFixed(2)))
	if note.TargetPrice.IsPositive() {
		builder.WriteString(fmt.Sprintf("<p>Your target price: %s</p>", note.TargetPrice.StringFixed(2)))
	}
	if note.AllTimeLow.IsPositive() {
		builder.WriteString(fmt.Sprintf("<p>Lowest price we have ever seen: %s</p>", note.AllTimeLow.StringFixed(2)))
	}
	if note.ProductURL != "" {
		builder.WriteString(fmt.Sprintf(`<p><a href="%s">View price history</a></p>`, note.ProductURL))
	}
	return builder.String()
}

var _ Notifier = (*EmailNotifier)(nil)

package whatsapp

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/omanias/tienda-api/models"
)

// TwiML is the acknowledgment body every webhook call must receive, even
// when internal processing failed, so Twilio does not retry the delivery.
const TwiML = `<?xml version="1.0" encoding="UTF-8"?>
<Response></Response>`

// InboundMessage is one parsed WhatsApp message.
type InboundMessage struct {
	From      string
	Text      string
	MessageID string
}

// Sender delivers an outbound message to a WhatsApp user.
type Sender interface {
	Send(ctx context.Context, to, text string) error
}

// ParseWebhook extracts sender, text and message sid from Twilio's
// form-encoded webhook. Returns nil when the payload carries no usable text.
func ParseWebhook(form url.Values) *InboundMessage {
	from := digitsOnly(strings.TrimPrefix(form.Get("From"), "whatsapp:"))
	text := form.Get("Body")
	if from == "" || text == "" {
		log.Printf("[TWILIO][WEBHOOK] incomplete payload (from=%q, %d text bytes)", from, len(text))
		return nil
	}
	return &InboundMessage{
		From:      from,
		Text:      text,
		MessageID: form.Get("MessageSid"),
	}
}

// TwilioSender posts outbound messages to the Twilio Messages REST API.
type TwilioSender struct {
	client     *http.Client
	accountSID string
	authToken  string
	fromNumber string
}

// NewTwilioSenderFromEnv reads TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and
// TWILIO_WHATSAPP_NUMBER.
func NewTwilioSenderFromEnv() *TwilioSender {
	return &TwilioSender{
		client:     &http.Client{Timeout: 15 * time.Second},
		accountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		authToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		fromNumber: os.Getenv("TWILIO_WHATSAPP_NUMBER"),
	}
}

func (t *TwilioSender) Send(ctx context.Context, to, text string) error {
	trace := uuid.NewString()
	endpoint := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", t.accountSID)

	form := url.Values{}
	form.Set("From", t.fromNumber)
	form.Set("To", "whatsapp:+"+digitsOnly(to))
	form.Set("Body", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrTransport, err)
	}
	req.SetBasicAuth(t.accountSID, t.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		log.Printf("[TWILIO][SEND] ❌ trace=%s error: %v", trace, err)
		return fmt.Errorf("%w: %v", models.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		log.Printf("[TWILIO][SEND] ❌ trace=%s status=%d body=%s", trace, resp.StatusCode, body)
		return fmt.Errorf("%w: twilio returned status %d", models.ErrTransport, resp.StatusCode)
	}
	log.Printf("[TWILIO][SEND] ✅ trace=%s to=%s (%d chars)", trace, to, len(text))
	return nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

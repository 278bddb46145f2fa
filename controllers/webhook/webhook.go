package webhookcontroller

import (
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/omanias/tienda-api/models"
	"github.com/omanias/tienda-api/services/assistant"
	"github.com/omanias/tienda-api/services/whatsapp"
)

// Verify handles the provider's webhook verification GET.
func Verify() gin.HandlerFunc {
	return func(c *gin.Context) {
		mode := c.Query("hub.mode")
		token := c.Query("hub.verify_token")
		if mode == "subscribe" && token == os.Getenv("WHATSAPP_VERIFY_TOKEN") {
			log.Println("[WHATSAPP][VERIFY] webhook verified ✔️")
			c.String(http.StatusOK, c.Query("hub.challenge"))
			return
		}
		c.String(http.StatusForbidden, "Forbidden")
	}
}

// Receive handles inbound WhatsApp messages from Twilio. Whatever happens
// internally, Twilio always gets a well-formed empty TwiML ack so it does
// not retry the delivery.
func Receive(svc *assistant.Service, sender whatsapp.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		ack := func() { c.Data(http.StatusOK, "text/xml", []byte(whatsapp.TwiML)) }

		if err := c.Request.ParseForm(); err != nil {
			log.Printf("[WHATSAPP][INCOMING] unparseable form: %v", err)
			ack()
			return
		}
		msg := whatsapp.ParseWebhook(c.Request.PostForm)
		if msg == nil {
			ack()
			return
		}
		log.Printf("[WHATSAPP][INCOMING] from=%s sid=%s (%d chars)", msg.From, msg.MessageID, len(msg.Text))

		reply, _ := svc.Handle(c.Request.Context(), msg.From, msg.Text)

		if err := sender.Send(c.Request.Context(), msg.From, reply); err != nil {
			// The cart mutation (if any) already succeeded; delivery failure
			// is logged, not rolled back.
			if errors.Is(err, models.ErrTransport) {
				log.Printf("[WHATSAPP][OUTGOING] ❌ delivery failed: %v", err)
			} else {
				log.Printf("[WHATSAPP][OUTGOING] ❌ unexpected send error: %v", err)
			}
		} else {
			log.Printf("[WHATSAPP][OUTGOING] ✅ reply sent to %s", msg.From)
		}
		ack()
	}
}

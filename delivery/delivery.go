package delivery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"mjolnir/models"
)

// Poster forwards a placed order to the delivery department. Swapped for
// a fake in worker tests.
type Poster interface {
	Forward(order models.Order) error
}

// WebhookPoster posts the order to DELIVERY_WEBHOOK. An unset URL is a
// no-op, matching a deployment without a delivery service.
type WebhookPoster struct {
	Client *http.Client
}

func NewWebhookPoster() *WebhookPoster {
	return &WebhookPoster{Client: &http.Client{Timeout: 10 * time.Second}}
}

func (p *WebhookPoster) Forward(order models.Order) error {
	url := os.Getenv("DELIVERY_WEBHOOK")
	if url == "" {
		return nil
	}

	payload, err := json.Marshal(order)
	if err != nil {
		return err
	}

	resp, err := p.Client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("delivery webhook returned %s", resp.Status)
	}
	return nil
}

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// WebhookNotifier posts assignment events to an external delivery service
// (the WhatsApp/email pipeline lives behind it).
type WebhookNotifier struct {
	BaseURL string
	Client  *http.Client
}

func (n WebhookNotifier) NotifyAssignment(ctx context.Context, ev Event) error {
	client := n.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.BaseURL+"/assignments", bytes.NewBuffer(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.New("notification service error: " + resp.Status)
	}
	return nil
}

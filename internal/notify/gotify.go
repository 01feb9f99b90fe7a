package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Guliveer/fh-car-models/internal/model"
)

// Gotify sends messages to a self-hosted Gotify server.
type Gotify struct {
	baseNotifier
	url        string
	token      string
	httpClient *http.Client
}

type gotifyPayload struct {
	Title    string         `json:"title"`
	Message  string         `json:"message"`
	Priority int            `json:"priority"`
	Extras   map[string]any `json:"extras,omitempty"`
}

// Send posts msg to the server's /message endpoint. Fields travel as
// extras under "carmodels::fields".
func (g *Gotify) Send(ctx context.Context, msg Message) error {
	payload := gotifyPayload{Title: msg.Title, Message: formatPlain(msg), Priority: 5}
	if msg.Event == model.EventLookupUnavailable {
		payload.Priority = 8
	}
	if len(msg.Fields) > 0 {
		payload.Extras = map[string]any{"carmodels::fields": msg.Fields}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("gotify: marshal payload: %w", err)
	}

	endpoint := strings.TrimRight(g.url, "/") + "/message"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("gotify: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Gotify-Key", g.token)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gotify: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("gotify: unexpected status %d", resp.StatusCode)
	}
	return nil
}

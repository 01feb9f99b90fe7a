package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Webhook delivers notifications to a generic HTTP endpoint.
type Webhook struct {
	baseNotifier
	url        string
	method     string
	httpClient *http.Client
}

type webhookPayload struct {
	Event   string            `json:"event"`
	Title   string            `json:"title"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Send delivers msg. POST sends a JSON body; GET puts the event, title,
// message and every field into the query string.
func (w *Webhook) Send(ctx context.Context, msg Message) error {
	var (
		req *http.Request
		err error
	)

	switch method := strings.ToUpper(w.method); method {
	case http.MethodGet:
		u, parseErr := url.Parse(w.url)
		if parseErr != nil {
			return fmt.Errorf("webhook: parse url: %w", parseErr)
		}
		q := u.Query()
		for k, v := range msg.Fields {
			q.Set(k, v)
		}
		q.Set("event", string(msg.Event))
		q.Set("title", msg.Title)
		q.Set("message", msg.Text)
		u.RawQuery = q.Encode()
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)

	case http.MethodPost:
		body, marshalErr := json.Marshal(webhookPayload{
			Event:   string(msg.Event),
			Title:   msg.Title,
			Message: msg.Text,
			Fields:  msg.Fields,
		})
		if marshalErr != nil {
			return fmt.Errorf("webhook: marshal payload: %w", marshalErr)
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
		if err == nil {
			req.Header.Set("Content-Type", "application/json")
		}

	default:
		return fmt.Errorf("webhook: unsupported method %q (use GET or POST)", method)
	}
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: unexpected status %d", resp.StatusCode)
	}
	return nil
}

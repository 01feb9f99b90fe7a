package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
)

const telegramAPIBase = "https://api.telegram.org"

// Telegram sends messages through the Telegram Bot API.
type Telegram struct {
	baseNotifier
	apiBase             string
	token               string
	chatID              string
	disableNotification bool
	httpClient          *http.Client
}

// formatTelegram renders msg as Telegram HTML: a bold title, the text, then
// one "key: value" line per field.
func formatTelegram(msg Message) string {
	var b strings.Builder
	if msg.Title != "" {
		fmt.Fprintf(&b, "<b>%s</b>\n", html.EscapeString(msg.Title))
	}
	b.WriteString(html.EscapeString(msg.Text))
	for _, k := range msg.FieldKeys() {
		fmt.Fprintf(&b, "\n<i>%s</i>: %s", html.EscapeString(k), html.EscapeString(msg.Fields[k]))
	}
	return b.String()
}

// Send posts msg to the configured chat.
func (t *Telegram) Send(ctx context.Context, msg Message) error {
	payload := map[string]any{
		"chat_id":                  t.chatID,
		"text":                     formatTelegram(msg),
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
		"disable_notification":     t.disableNotification,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("telegram: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

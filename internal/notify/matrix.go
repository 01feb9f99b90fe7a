package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"
)

// Matrix posts messages to a room through the Matrix client-server API.
type Matrix struct {
	baseNotifier
	homeserver  string
	accessToken string
	roomID      string
	httpClient  *http.Client
	txnCounter  atomic.Int64
}

// homeserverURL accepts either a bare host or a full base URL.
func (m *Matrix) homeserverURL() string {
	hs := strings.TrimRight(m.homeserver, "/")
	if strings.HasPrefix(hs, "http://") || strings.HasPrefix(hs, "https://") {
		return hs
	}
	return "https://" + hs
}

// Send puts msg into the configured room as an m.text event.
func (m *Matrix) Send(ctx context.Context, msg Message) error {
	txnID := fmt.Sprintf("carmodels.%d.%d", time.Now().UnixNano(), m.txnCounter.Add(1))
	apiURL := fmt.Sprintf("%s/_matrix/client/v3/rooms/%s/send/m.room.message/%s",
		m.homeserverURL(), url.PathEscape(m.roomID), txnID)

	body, err := json.Marshal(map[string]string{
		"msgtype": "m.text",
		"body":    formatPlain(msg),
	})
	if err != nil {
		return fmt.Errorf("matrix: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("matrix: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.accessToken)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("matrix: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("matrix: unexpected status %d", resp.StatusCode)
	}
	return nil
}

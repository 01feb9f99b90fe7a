package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Guliveer/fh-car-models/internal/model"
)

// Embed colours per event.
var discordColors = map[model.Event]int{
	model.EventCarChanged:        0x2ECC71,
	model.EventCarUnknown:        0xF1C40F,
	model.EventLookupUnavailable: 0xE74C3C,
	model.EventGameDetected:      0x3498DB,
	model.EventGameStopped:       0x95A5A6,
}

const discordDefaultColor = 0x7F8C8D

// Discord posts embeds to a Discord webhook.
type Discord struct {
	baseNotifier
	webhookURL string
	httpClient *http.Client
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Color       int            `json:"color"`
	Fields      []discordField `json:"fields,omitempty"`
}

type discordPayload struct {
	Username string         `json:"username"`
	Embeds   []discordEmbed `json:"embeds"`
}

// Send posts msg as a single embed with one inline field per attribute.
func (d *Discord) Send(ctx context.Context, msg Message) error {
	color, ok := discordColors[msg.Event]
	if !ok {
		color = discordDefaultColor
	}

	embed := discordEmbed{Title: msg.Title, Description: msg.Text, Color: color}
	for _, k := range msg.FieldKeys() {
		embed.Fields = append(embed.Fields, discordField{Name: k, Value: msg.Fields[k], Inline: true})
	}

	body, err := json.Marshal(discordPayload{Username: defaultTitle, Embeds: []discordEmbed{embed}})
	if err != nil {
		return fmt.Errorf("discord: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("discord: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("discord: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("discord: unexpected status %d", resp.StatusCode)
	}
	return nil
}

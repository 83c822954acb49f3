// Package notify posts leaderboard events to a Discord-compatible webhook.
// Notifications are best-effort: callers log failures and move on.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"rankbook/internal/leaderboard"
)

const (
	// Colors for embeds
	colorGold  = 15844367 // 0xF1C40F - for leaderboard entries
	colorGreen = 5763719  // 0x57F287 - for sweep summaries

	// Default timeout for webhook requests
	defaultWebhookTimeout = 10 * time.Second

	// Max retries for rate limiting
	maxRetries = 3
)

// WebhookPayload represents a webhook message
type WebhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// Embed represents a message embed
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

// EmbedField represents a field in an embed
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// EmbedFooter represents the footer of an embed
type EmbedFooter struct {
	Text string `json:"text"`
}

// NewTopEntryPayload announces a player newly ranked inside the top ten.
func NewTopEntryPayload(obs leaderboard.PlayerObservation, position int) WebhookPayload {
	rank := obs.Tier
	if obs.Division != "" {
		rank += " " + obs.Division
	}
	return WebhookPayload{
		Embeds: []Embed{
			{
				Title: "New top-10 entry",
				Color: colorGold,
				Fields: []EmbedField{
					{
						Name:   "Player",
						Value:  fmt.Sprintf("%s (%s)", obs.DisplayName, obs.Region),
						Inline: true,
					},
					{
						Name:   "Rank",
						Value:  fmt.Sprintf("%s, %d LP", rank, obs.LeaguePoints),
						Inline: true,
					},
					{
						Name:   "Position",
						Value:  "#" + strconv.Itoa(position),
						Inline: true,
					},
				},
				Footer: &EmbedFooter{
					Text: "score " + strconv.Itoa(obs.Score),
				},
			},
		},
	}
}

// NewSweepSummaryPayload summarizes a finished refresh sweep.
func NewSweepSummaryPayload(refreshed, failed int, took time.Duration) WebhookPayload {
	return WebhookPayload{
		Embeds: []Embed{
			{
				Title: "Leaderboard refresh complete",
				Color: colorGreen,
				Fields: []EmbedField{
					{
						Name:   "Refreshed",
						Value:  strconv.Itoa(refreshed),
						Inline: true,
					},
					{
						Name:   "Failed",
						Value:  strconv.Itoa(failed),
						Inline: true,
					},
					{
						Name:   "Took",
						Value:  formatDuration(took),
						Inline: true,
					},
				},
			},
		},
	}
}

// WebhookClient sends notifications to a webhook URL
type WebhookClient struct {
	webhookURL string
	httpClient *http.Client
}

// NewWebhookClient creates a new WebhookClient
func NewWebhookClient(webhookURL string) *WebhookClient {
	return &WebhookClient{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: defaultWebhookTimeout,
		},
	}
}

// SendTopEntryNotification announces a new top-ten player.
func (c *WebhookClient) SendTopEntryNotification(ctx context.Context, obs leaderboard.PlayerObservation, position int) error {
	return c.sendPayload(ctx, NewTopEntryPayload(obs, position))
}

// SendSweepSummary announces a finished refresh sweep.
func (c *WebhookClient) SendSweepSummary(ctx context.Context, refreshed, failed int, took time.Duration) error {
	return c.sendPayload(ctx, NewSweepSummaryPayload(refreshed, failed, took))
}

// sendPayload sends a webhook payload with retry on rate limiting
func (c *WebhookClient) sendPayload(ctx context.Context, payload WebhookPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		resp.Body.Close()

		// Discord returns 204 No Content on success
		if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusOK {
			return nil
		}

		// Rate limited - wait and retry
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := resp.Header.Get("Retry-After")
			waitDuration := time.Second
			if retryAfter != "" {
				if seconds, err := strconv.Atoi(retryAfter); err == nil {
					waitDuration = time.Duration(seconds) * time.Second
				}
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(waitDuration):
				continue
			}
		}

		return fmt.Errorf("webhook request failed with status %d", resp.StatusCode)
	}

	return fmt.Errorf("webhook request failed after %d retries", maxRetries)
}

// formatDuration formats a duration as "Xm Ys"
func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

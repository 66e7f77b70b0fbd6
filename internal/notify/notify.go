// Package notify delivers user-facing alerts. Every notification is
// written to the operator-visible log; push delivery only happens
// when an access token is configured and is best effort, a failed
// push never fails the run.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultEndpoint = "https://api.pushbullet.com/v2/pushes"
	pushType        = "note"
)

type pushPayload struct {
	Title string `json:"title"`
	Type  string `json:"type"`
	Body  string `json:"body"`
}

// Notifier formats and dispatches alerts. Title identifies the
// automated session that produced the alert (typically its user agent
// string).
type Notifier struct {
	Token    string
	Title    string
	Endpoint string
	client   *http.Client
	logger   *slog.Logger
}

func NewNotifier(token, title string) *Notifier {
	return &Notifier{
		Token:    token,
		Title:    title,
		Endpoint: defaultEndpoint,
		client: &http.Client{
			Timeout: time.Second * 10,
		},
		logger: slog.With(slog.String("component", "notify")),
	}
}

// Notify logs the message and, if a token is configured, issues one
// push request. Delivery failures are returned but callers are
// expected to treat them as non-fatal; there are no retries.
func (n *Notifier) Notify(ctx context.Context, message string) error {
	n.logger.Info(message, slog.String("agent", n.Title))
	if n.Token == "" {
		n.logger.Debug("no push token configured, skipping push delivery")
		return nil
	}

	body, err := json.Marshal(pushPayload{
		Title: n.Title,
		Type:  pushType,
		Body:  message,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Access-Token", n.Token)
	req.Header.Set("Content-Type", "application/json")

	res, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("push delivery failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("push delivery failed: status code error: %d %s", res.StatusCode, res.Status)
	}
	n.logger.Debug("push delivered")
	return nil
}

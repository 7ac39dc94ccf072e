package apns

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/openboard/notifier/internal/push"
)

// APNs environments. Sandbox and production use different hosts and accept
// different device tokens, so the choice must come from configuration.
const (
	EnvironmentSandbox    = "sandbox"
	EnvironmentProduction = "production"

	sandboxHost    = "https://api.sandbox.push.apple.com"
	productionHost = "https://api.push.apple.com"
)

// expiredTokenReason is the APNs reason string that signals the provider token
// aged out server-side. It is the only response that triggers a retry.
const expiredTokenReason = "ExpiredProviderToken"

const requestTimeout = 10 * time.Second

// Alert is the user-visible part of an APNs payload.
type Alert struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type aps struct {
	Alert Alert  `json:"alert"`
	Badge int    `json:"badge"`
	Sound string `json:"sound"`
}

// Payload is the APNs request body: the aps dictionary plus the custom keys the
// app uses to deep-link into the right screen.
type Payload struct {
	APS              aps    `json:"aps"`
	PostID           uint   `json:"post_id"`
	CommentID        *uint  `json:"comment_id,omitempty"`
	NotificationType string `json:"notification_type"`
}

// Client sends alert pushes to individual devices through the APNs HTTP/2
// provider API. It implements push.Sender.
type Client struct {
	topic   string
	baseURL string
	tokens  *TokenSource
	http    *http.Client
	log     *zap.Logger
}

// NewClient returns a client targeting the given environment. topic is the app
// bundle identifier.
func NewClient(tokens *TokenSource, topic, environment string, log *zap.Logger) *Client {
	host := sandboxHost
	if environment == EnvironmentProduction {
		host = productionHost
	}
	return &Client{
		topic:   topic,
		baseURL: host,
		tokens:  tokens,
		http:    &http.Client{Timeout: requestTimeout},
		log:     log,
	}
}

// Send delivers one alert to one device. An expired provider token is recovered
// transparently: the cache is invalidated, a fresh token is signed, and the
// request is retried exactly once. Every other failure — rejection statuses,
// timeouts, connection errors — comes back as an unsuccessful push.Result so a
// single bad device never aborts the rest of a fan-out. The returned error is
// non-nil only for credential configuration problems.
func (c *Client) Send(ctx context.Context, deviceToken string, msg *push.Message) (push.Result, error) {
	body, err := json.Marshal(&Payload{
		APS: aps{
			Alert: Alert{Title: msg.Title, Body: msg.Body},
			Badge: 1,
			Sound: "default",
		},
		PostID:           msg.PostID,
		CommentID:        msg.CommentID,
		NotificationType: msg.Type,
	})
	if err != nil {
		return push.Result{}, fmt.Errorf("apns: encode payload: %w", err)
	}

	result, expired, err := c.post(ctx, deviceToken, body)
	if err != nil || !expired {
		return result, err
	}

	// Apple says our provider token aged out; sign a fresh one and retry once.
	c.tokens.Invalidate()
	c.log.Info("provider token expired, retrying with fresh token",
		zap.Int("status", result.StatusCode))
	result, _, err = c.post(ctx, deviceToken, body)
	return result, err
}

func (c *Client) post(ctx context.Context, deviceToken string, body []byte) (push.Result, bool, error) {
	token, err := c.tokens.Token()
	if err != nil {
		return push.Result{}, false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/3/device/"+deviceToken, bytes.NewReader(body))
	if err != nil {
		return push.Result{Response: err.Error()}, false, nil
	}
	req.Header.Set("authorization", "bearer "+token)
	req.Header.Set("apns-topic", c.topic)
	req.Header.Set("apns-push-type", "alert")
	req.Header.Set("apns-priority", "10")
	req.Header.Set("content-type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Network-level failure. Isolated to this device.
		return push.Result{Response: err.Error()}, false, nil
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	result := push.Result{
		Success:    resp.StatusCode == http.StatusOK,
		StatusCode: resp.StatusCode,
		Response:   string(raw),
	}
	expired := resp.StatusCode == http.StatusForbidden &&
		strings.Contains(result.Response, expiredTokenReason)
	return result, expired, nil
}

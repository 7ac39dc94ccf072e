package push

import "context"

// Message is the platform-neutral notification content produced by the event
// pipeline. Senders translate it to their provider's wire format.
type Message struct {
	Title     string
	Body      string
	PostID    uint
	CommentID *uint
	Type      string // notification type: like, comment, new_post
}

// Result is the outcome of one delivery attempt to one device.
type Result struct {
	Success    bool
	StatusCode int
	Response   string
}

// Sender delivers one push message to one device endpoint. Per-device failures
// (rejections, timeouts, network errors) are reported through Result, never as an
// error; a non-nil error means the sender itself is misconfigured and further
// attempts with it are pointless.
type Sender interface {
	Send(ctx context.Context, deviceToken string, msg *Message) (Result, error)
}

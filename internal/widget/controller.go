package widget

import (
	"context"
	"strings"
	"unicode/utf8"
)

// State is the widget lifecycle state.
type State int

const (
	// StateClosed: widget hidden. Store and session persist unchanged.
	StateClosed State = iota
	// StateIdle: widget open, ready for input.
	StateIdle
	// StatePending: one request in flight; submissions are suppressed.
	StatePending
)

// String implements fmt.Stringer for logs and test failure messages.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	default:
		return "unknown"
	}
}

// InputCap is the client-side input length cap the character counter is
// drawn against. It is a UX bound, not a security boundary; the proxy
// clamps content independently.
const InputCap = 500

// FallbackReply is appended in place of an assistant reply when the request
// fails for any reason. Failures never surface as raw errors.
const FallbackReply = "Sorry, I encountered an error. Please try again later."

// Sender delivers one conversation snapshot to the backend and returns the
// assistant's reply. Implementations must not retry.
type Sender interface {
	Send(ctx context.Context, sessionID string, history []Message) (string, error)
}

// Controller owns the widget lifecycle: visibility, the pending gate, the
// input buffer, and orchestration of backend calls against the message
// store.
//
// Visibility and the pending gate are independent, like in the browser
// widget: closing hides the conversation but an in-flight turn still runs
// to completion and lands in the preserved store. The controller is
// event-loop-single-threaded; callers drive it from one goroutine and run
// the network call itself between BeginSubmit and FinishReply.
type Controller struct {
	session string
	store   *MessageStore
	sender  Sender

	open    bool
	pending bool
	input   string
}

// NewController creates a closed widget with a fresh session token and a
// greeting-seeded store.
func NewController(sender Sender) *Controller {
	return &Controller{
		session: NewSessionID(),
		store:   NewMessageStore(),
		sender:  sender,
	}
}

// State derives the lifecycle state: closed wins over pending, pending over
// idle.
func (c *Controller) State() State {
	switch {
	case !c.open:
		return StateClosed
	case c.pending:
		return StatePending
	default:
		return StateIdle
	}
}

// SessionID returns the instance's opaque session token. It never changes
// for the life of the instance.
func (c *Controller) SessionID() string { return c.session }

// Messages returns a copy of the conversation in insertion order.
func (c *Controller) Messages() []Message { return c.store.All() }

// Toggle opens a closed widget or closes an open one. Closing never resets
// the store, session, or an in-flight turn.
func (c *Controller) Toggle() { c.open = !c.open }

// SetInput replaces the input buffer, clamped to InputCap runes.
func (c *Controller) SetInput(s string) {
	if utf8.RuneCountInString(s) > InputCap {
		s = string([]rune(s)[:InputCap])
	}
	c.input = s
}

// Input returns the current input buffer.
func (c *Controller) Input() string { return c.input }

// InputLen reports the live character count for the counter display.
func (c *Controller) InputLen() int { return utf8.RuneCountInString(c.input) }

// CanSubmit reports whether a submission would be accepted right now:
// widget open, not pending, input non-blank.
func (c *Controller) CanSubmit() bool {
	return c.open && !c.pending && strings.TrimSpace(c.input) != ""
}

// BeginSubmit starts a turn: it appends the trimmed input as a user
// message, clears the buffer, and raises the pending gate. It returns the
// history snapshot to send. When submission is suppressed (blank input,
// already pending, or closed) it returns ok=false and nothing changes.
func (c *Controller) BeginSubmit() (history []Message, ok bool) {
	if !c.CanSubmit() {
		return nil, false
	}
	content := strings.TrimSpace(c.input)
	c.store.Append("user", content)
	c.input = ""
	c.pending = true
	return c.store.All(), true
}

// FinishReply completes a turn: the reply (or FallbackReply when the call
// failed or returned nothing) is appended and the pending gate drops. The
// update path is total; it cannot fail.
func (c *Controller) FinishReply(reply string, err error) {
	if err != nil || reply == "" {
		reply = FallbackReply
	}
	c.store.Append("assistant", reply)
	c.pending = false
}

// Submit runs one full turn synchronously through the configured Sender.
// It is a no-op under the same conditions as BeginSubmit. The call is
// total: transport or decode failures become FallbackReply and the widget
// is usable afterwards.
func (c *Controller) Submit(ctx context.Context) {
	history, ok := c.BeginSubmit()
	if !ok {
		return
	}
	reply, err := c.sender.Send(ctx, c.session, history)
	c.FinishReply(reply, err)
}

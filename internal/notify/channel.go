// Package notify implements the single-slot, auto-dismissing notification
// shown to a session.
package notify

import (
	"sync"
	"time"

	"emarket/internal/models"
	"emarket/internal/timer"
)

// DefaultDismissAfter is how long a notification stays visible
const DefaultDismissAfter = 4 * time.Second

// Channel holds at most one notification. A new one overwrites the previous
// and restarts the dismiss timer.
type Channel struct {
	mu      sync.Mutex
	current models.Notification
	seq     uint64
	dismiss *timer.Slot
	after   time.Duration
}

// NewChannel creates an empty channel
func NewChannel(sched timer.Scheduler, dismissAfter time.Duration) *Channel {
	if dismissAfter <= 0 {
		dismissAfter = DefaultDismissAfter
	}
	return &Channel{
		current: models.Notification{Type: models.SeveritySuccess},
		dismiss: timer.NewSlot(sched),
		after:   dismissAfter,
	}
}

// Success shows a success message
func (c *Channel) Success(message string) {
	c.Show(message, models.SeveritySuccess)
}

// Error shows an error message
func (c *Channel) Error(message string) {
	c.Show(message, models.SeverityError)
}

// Show replaces the slot and makes it visible
func (c *Channel) Show(message, severity string) {
	if severity != models.SeverityError {
		severity = models.SeveritySuccess
	}

	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.current = models.Notification{Message: message, Type: severity, IsVisible: true}
	c.mu.Unlock()

	c.dismiss.Schedule(c.after, func() { c.hideIf(seq) })
}

// Dismiss hides the notification immediately
func (c *Channel) Dismiss() {
	c.dismiss.Cancel()
	c.hide()
}

// Current returns the slot contents. The message is kept after dismissal.
func (c *Channel) Current() models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Close cancels the pending dismiss timer
func (c *Channel) Close() {
	c.dismiss.Cancel()
}

func (c *Channel) hide() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current.IsVisible = false
}

// hideIf hides the notification only if it is still the one shown as seq.
// A timer that fired just before being replaced must not hide its successor.
func (c *Channel) hideIf(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seq == seq {
		c.current.IsVisible = false
	}
}

package client

import (
	"log"
	"sync"
)

// Banner renders the connectivity banner.
//
// Content and visibility are independent: SetContent is always called before
// Show, and Hide must not clear previously set content, so re-showing the
// same failure kind without an intervening content change still displays
// correctly.
type Banner interface {
	SetContent(heading string, showContact bool)
	Show()
	Hide()
}

// TextBanner renders banner transitions to a log function. It backs the
// statuswatch command and doubles as a test observer.
type TextBanner struct {
	mu          sync.Mutex
	logf        func(format string, args ...any)
	heading     string
	showContact bool
	visible     bool
}

// NewTextBanner creates a text banner. A nil logf falls back to log.Printf.
func NewTextBanner(logf func(format string, args ...any)) *TextBanner {
	if logf == nil {
		logf = log.Printf
	}
	return &TextBanner{logf: logf}
}

// SetContent records the banner copy without changing visibility.
func (b *TextBanner) SetContent(heading string, showContact bool) {
	b.mu.Lock()
	b.heading = heading
	b.showContact = showContact
	b.mu.Unlock()
}

// Show makes the banner visible with whatever content was last set.
func (b *TextBanner) Show() {
	b.mu.Lock()
	heading := b.heading
	showContact := b.showContact
	wasVisible := b.visible
	b.visible = true
	b.mu.Unlock()

	if !wasVisible {
		b.logf("banner shown: %s (contact=%v)", heading, showContact)
	}
}

// Hide clears visibility only; the content survives for the next Show.
func (b *TextBanner) Hide() {
	b.mu.Lock()
	wasVisible := b.visible
	b.visible = false
	b.mu.Unlock()

	if wasVisible {
		b.logf("banner hidden")
	}
}

// Visible reports the current visibility.
func (b *TextBanner) Visible() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.visible
}

// Heading returns the last content set.
func (b *TextBanner) Heading() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.heading
}

// ContactShown reports whether the contact affordance is part of the content.
func (b *TextBanner) ContactShown() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.showContact
}

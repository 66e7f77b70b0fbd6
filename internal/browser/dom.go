// Package browser drives a chromedp-controlled browser session. It
// provides the primitives the workflow is built from: a condition
// poller, an element locator with fallback selector strategies, a
// visibility guarantor and a form interaction helper. All element
// operations go through the DOM interface so they can be tested
// against a mock (see mockdom.go).
package browser

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrPollTimeout is returned when a polled condition does not
	// become true before its deadline.
	ErrPollTimeout = errors.New("condition not met before deadline")
	// ErrElementNotFound is returned when none of a target's selector
	// strategies resolves within its timeout.
	ErrElementNotFound = errors.New("element not found")
	// ErrDetached is returned when a resolved element does not (re)attach
	// to the live document before the deadline.
	ErrDetached = errors.New("element detached from document")
	// ErrNotVisible is returned when an element does not intersect the
	// viewport before the deadline, even after scrolling it into view.
	ErrNotVisible = errors.New("element not visible in viewport")
	// ErrNavigationTimeout is returned when a page navigation does not
	// complete in time.
	ErrNavigationTimeout = errors.New("navigation timed out")
)

// NodeRef is an opaque, live reference to a resolved UI node, scoped
// to the page that produced it. Refs must not be cached across
// workflow steps because the underlying document may mutate.
type NodeRef string

// Strategy is one specific way of locating a UI element: an ordered
// chain of selector steps, resolved left to right. After a non-final
// step the locator descends into the resolved node's shadow root if
// it has one.
type Strategy []string

// Target describes a logical UI element as a set of alternative
// selector strategies, tried in order.
type Target struct {
	Name       string
	Strategies []Strategy
	Timeout    time.Duration
}

// DOM is the element-level surface of the browser engine. The cdp
// implementation lives in cdpdom.go, a mock in mockdom.go.
type DOM interface {
	// DocumentRoot returns a ref to the page's document node.
	DocumentRoot(ctx context.Context) (NodeRef, error)
	// Query resolves one selector step against the given root. The
	// second return value is false if no node matched.
	Query(ctx context.Context, root NodeRef, selector string) (NodeRef, bool, error)
	// InnerRoot returns the node's shadow root if it exposes one,
	// otherwise the node itself.
	InnerRoot(ctx context.Context, node NodeRef) (NodeRef, error)
	// Attached reports whether the node is connected to the live document.
	Attached(ctx context.Context, node NodeRef) (bool, error)
	// Intersecting reports whether the node overlaps the visible
	// viewport by any non-zero amount.
	Intersecting(ctx context.Context, node NodeRef) (bool, error)
	// ScrollIntoView requests a smooth scroll that centers the node.
	ScrollIntoView(ctx context.Context, node NodeRef) error
	// ControlType returns the element's declared input category, eg
	// "text", "password", "select-one" or the lowercased tag name.
	ControlType(ctx context.Context, node NodeRef) (string, error)
	// SendKeys focuses the node and simulates per-character keystrokes.
	SendKeys(ctx context.Context, node NodeRef, value string) error
	// SetValue assigns the value directly and dispatches the input and
	// change events reactive frontends listen for.
	SetValue(ctx context.Context, node NodeRef, value string) error
	// Click clicks the node.
	Click(ctx context.Context, node NodeRef) error
}

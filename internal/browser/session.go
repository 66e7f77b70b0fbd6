package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
	"github.com/jakopako/visawatch/internal/log"
)

// SessionConfig holds the knobs for a browser session.
type SessionConfig struct {
	UserAgent      string
	Headless       bool
	PageLoadWaitMS int
}

// Session owns one browser tab plus its cookies for the duration of a
// run. It is not safe for concurrent use; the workflow drives it
// strictly sequentially and releases it exactly once via Close.
type Session struct {
	*SessionConfig
	dom         DOM
	tabCtx      context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	closeOnce   sync.Once
}

// NewSession launches a browser allocator below the given context, so
// that cancelling the context (eg when the run supervisor's ceiling
// fires) tears the browser process down as well.
func NewSession(ctx context.Context, sc *SessionConfig) *Session {
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(1920, 1080), // init with a desktop view (sometimes pages look different on mobile, eg buttons are missing)
	)
	if sc.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(sc.UserAgent))
	}
	if !sc.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if sc.PageLoadWaitMS == 0 {
		sc.PageLoadWaitMS = 2000 // default
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	return &Session{
		SessionConfig: sc,
		dom:           cdpDOM{},
		tabCtx:        tabCtx,
		cancelTab:     cancelTab,
		cancelAlloc:   cancelAlloc,
	}
}

// SetViewport emulates a fixed-size viewport for the tab.
func (s *Session) SetViewport(ctx context.Context, width, height int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(s.tabCtx, chromedp.EmulateViewport(width, height))
}

// Navigate opens the given url and waits the configured page-load
// delay so that client-side rendering has a chance to settle.
func (s *Session) Navigate(ctx context.Context, urlStr string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := log.LoggerFromContext(ctx)
	logger.Debug("navigating", slog.String("url", urlStr))
	tctx, cancel := context.WithTimeout(s.tabCtx, timeout)
	defer cancel()
	sleepTime := time.Duration(s.PageLoadWaitMS) * time.Millisecond
	err := chromedp.Run(tctx,
		chromedp.Navigate(urlStr),
		chromedp.Sleep(sleepTime),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s after %v", ErrNavigationTimeout, urlStr, timeout)
		}
		return fmt.Errorf("failed to navigate to %s: %w", urlStr, err)
	}
	return nil
}

// resolve runs the full locate-then-guarantee-visibility cycle for a
// target. The returned ref is only valid for the immediately
// following interaction; the document may mutate at any time.
func (s *Session) resolve(ctx context.Context, t Target) (NodeRef, error) {
	// the tab context descends from the run context, so cancellation
	// still propagates into the chromedp calls below
	if err := ctx.Err(); err != nil {
		return "", err
	}
	node, err := Locate(s.tabCtx, s.dom, t)
	if err != nil {
		return "", err
	}
	if err := EnsureVisible(s.tabCtx, s.dom, node, t.Timeout); err != nil {
		return "", fmt.Errorf("target %q: %w", t.Name, err)
	}
	return node, nil
}

// Fill locates the target and enters the given value into it.
func (s *Session) Fill(ctx context.Context, t Target, value string) error {
	node, err := s.resolve(ctx, t)
	if err != nil {
		return err
	}
	return TypeInto(s.tabCtx, s.dom, node, value)
}

// Click locates the target and clicks it.
func (s *Session) Click(ctx context.Context, t Target) error {
	node, err := s.resolve(ctx, t)
	if err != nil {
		return err
	}
	return s.dom.Click(s.tabCtx, node)
}

// WaitFor blocks until the target is resolved and visible, without
// interacting with it.
func (s *Session) WaitFor(ctx context.Context, t Target) error {
	_, err := s.resolve(ctx, t)
	return err
}

// CookieHeader returns a Cookie header value for all browser cookies
// that apply to the given url.
func (s *Session) CookieHeader(ctx context.Context, pageURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	var header string
	err = chromedp.Run(s.tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		cookies, err := storage.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		parts := []string{}
		for _, c := range cookies {
			if strings.HasSuffix(u.Hostname(), strings.TrimPrefix(c.Domain, ".")) {
				parts = append(parts, c.Name+"="+c.Value)
			}
		}
		header = strings.Join(parts, "; ")
		return nil
	}))
	return header, err
}

// UserAgent returns the user agent string the tab identifies as.
func (s *Session) UserAgent(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var ua string
	if err := chromedp.Run(s.tabCtx, chromedp.Evaluate("navigator.userAgent", &ua)); err != nil {
		return "", err
	}
	return ua, nil
}

// HTML returns the current page's outer html, used for failure
// diagnostics.
func (s *Session) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var body string
	err := chromedp.Run(s.tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		node, err := dom.GetDocument().Do(ctx)
		if err != nil {
			return err
		}
		body, err = dom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
		return err
	}))
	return body, err
}

// Close releases the tab and the browser process. Safe to call more
// than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.cancelTab()
		s.cancelAlloc()
	})
}

// Package portal talks to the scheduling portal's JSON endpoints. It
// does not render pages: the browser session does the authenticating,
// the portal client reuses the session's cookie and user agent for a
// direct request, which avoids a second costly page render purely to
// read already-available structured data.
package portal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/jsonquery"
)

const dateLayout = "2006-01-02"

// ErrUnexpectedStatus is returned when the portal answers a slot
// query with anything other than 200.
var ErrUnexpectedStatus = errors.New("unexpected portal response status")

// Slot is one calendar date offered by the portal as available for
// rescheduling.
type Slot struct {
	Date time.Time
}

// Query carries the session material for one authenticated slot query.
type Query struct {
	Region       string
	ScheduleID   int
	FacilityID   int
	CookieHeader string
	UserAgent    string
}

// Client queries the portal's slot-listing endpoint.
type Client struct {
	BaseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: time.Second * 30,
		},
		logger: slog.With(slog.String("component", "portal")),
	}
}

// AvailableDays fetches the open appointment days for the given
// schedule and facility, earliest first as the portal returns them.
func (c *Client) AvailableDays(ctx context.Context, q Query) ([]Slot, error) {
	daysURL := fmt.Sprintf("%s/en-%s/niv/schedule/%d/appointment/days/%d.json?appointments[expedite]=false",
		c.BaseURL, q.Region, q.ScheduleID, q.FacilityID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, daysURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cookie", q.CookieHeader)
	req.Header.Set("Referer", fmt.Sprintf("%s/en-%s/niv/schedule/%d/appointment", c.BaseURL, q.Region, q.ScheduleID))
	req.Header.Set("User-Agent", q.UserAgent)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("querying available days", slog.String("url", daysURL))
	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotModified {
		// we never send conditional headers, so a 304 means a proxy or
		// the portal misbehaved and there is no cached body to fall
		// back on
		return nil, fmt.Errorf("%w: 304 without a conditional request", ErrUnexpectedStatus)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, res.StatusCode, res.Status)
	}

	doc, err := jsonquery.Parse(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse portal response: %w", err)
	}
	nodes := jsonquery.Find(doc, "//date")
	slots := make([]Slot, 0, len(nodes))
	for _, n := range nodes {
		d, err := time.Parse(dateLayout, n.InnerText())
		if err != nil {
			return nil, fmt.Errorf("failed to parse slot date %q: %w", n.InnerText(), err)
		}
		slots = append(slots, Slot{Date: d})
	}
	return slots, nil
}

// Earliest returns the earliest of the given slots. The portal
// returns days sorted ascending but we do not rely on that.
func Earliest(slots []Slot) (Slot, bool) {
	if len(slots) == 0 {
		return Slot{}, false
	}
	earliest := slots[0]
	for _, s := range slots[1:] {
		if s.Date.Before(earliest.Date) {
			earliest = s
		}
	}
	return earliest, true
}

// loginErrorSelectors matches the banners the portal renders when a
// sign-in attempt is rejected.
const loginErrorSelectors = "#sign_in_form .error, .flash_messages .error, p.validation-error, .infoPopUp"

// LoginFailureReason extracts the visible error banner from a login
// page snapshot. Returns the empty string if no banner is present.
func LoginFailureReason(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find(loginErrorSelectors).First().Text())
}

package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/goccy/go-json"
)

const (
	DefaultFetchTimeout = 5 * time.Second

	defaultPublicHolidayURL = "https://date.nager.at/api/v3/publicholidays"
	defaultSchoolHolidayURL = "https://ferien-api.de/api/v1/holidays"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrEmptyCalendar    = errors.New("source returned no usable holidays")
)

// dateLayouts lists the timestamp formats the school-holiday source has
// been observed to emit.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Client fetches holiday data from the public date.nager.at and
// ferien-api.de endpoints. All requests share one bounded timeout; callers
// absorb any error by substituting the built-in fallback calendar.
type Client struct {
	httpClient *http.Client

	// overridable for tests
	publicHolidayURL string
	schoolHolidayURL string
}

// NewClient returns a Client with the given request timeout. A zero or
// negative timeout uses DefaultFetchTimeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Client{
		httpClient:       &http.Client{Timeout: timeout},
		publicHolidayURL: defaultPublicHolidayURL,
		schoolHolidayURL: defaultSchoolHolidayURL,
	}
}

type nagerHoliday struct {
	Date      string   `json:"date"`
	LocalName string   `json:"localName"`
	Counties  []string `json:"counties"`
}

// PublicHolidays fetches the nationwide holiday list and keeps the entries
// applying to the region. An empty counties list marks a nationwide
// holiday.
func (c *Client) PublicHolidays(ctx context.Context, year int, region Region) (map[string]time.Time, error) {
	url := fmt.Sprintf("%s/%d/DE", c.publicHolidayURL, year)

	var payload []nagerHoliday
	if err := c.getJSON(ctx, url, &payload); err != nil {
		return nil, err
	}

	county := fmt.Sprintf("DE-%s", region)
	out := make(map[string]time.Time)
	for _, hol := range payload {
		if len(hol.Counties) > 0 && !containsString(hol.Counties, county) {
			continue
		}
		day, err := time.Parse("2006-01-02", hol.Date)
		if err != nil {
			continue
		}
		out[hol.LocalName] = midnight(day)
	}
	if len(out) == 0 {
		return nil, ErrEmptyCalendar
	}
	return out, nil
}

type ferienHoliday struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Name  string `json:"name"`
}

// SchoolHolidays fetches the school-holiday periods of a region. Entries
// with unparseable dates are skipped; display labels are normalized to
// embed the region name and year.
func (c *Client) SchoolHolidays(ctx context.Context, year int, region Region) ([]Interval, error) {
	url := fmt.Sprintf("%s/%s/%d", c.schoolHolidayURL, region, year)

	var payload []ferienHoliday
	if err := c.getJSON(ctx, url, &payload); err != nil {
		return nil, err
	}

	var out []Interval
	for _, hol := range payload {
		start, okStart := parseFlexibleDate(hol.Start)
		end, okEnd := parseFlexibleDate(hol.End)
		if !okStart || !okEnd {
			continue
		}
		name := hol.Name
		if name == "" {
			name = "Schulferien"
		}
		out = append(out, Interval{
			Start: start,
			End:   end,
			Label: NewLabel(normalizeDisplay(name, region, year), region),
		})
	}
	if len(out) == 0 {
		return nil, ErrEmptyCalendar
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })

	// Overlapping periods would make categorization depend on list order.
	// A same-label overlap extends the kept interval; a conflicting label
	// is dropped.
	merged := out[:1]
	for _, iv := range out[1:] {
		prev := &merged[len(merged)-1]
		if iv.Start.After(prev.End) {
			merged = append(merged, iv)
			continue
		}
		if iv.Label == prev.Label && iv.End.After(prev.End) {
			prev.End = iv.End
		}
	}
	return merged, nil
}

func (c *Client) getJSON(ctx context.Context, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %d, %w", url, resp.StatusCode, ErrUnexpectedStatus)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

func parseFlexibleDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return midnight(t), true
		}
	}
	return time.Time{}, false
}

func containsString(vals []string, want string) bool {
	for _, v := range vals {
		if v == want {
			return true
		}
	}
	return false
}

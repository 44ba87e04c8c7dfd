package session

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"webprint-client/internal/gateway"
)

// Per-page prices used for the budget estimates.
const (
	blackPagePrice = 0.03
	colorPagePrice = 0.285
)

// queueDateLayouts are the date formats the print accounting backend has been
// seen to report.
var queueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"01/02/2006 15:04",
}

// QueueEntry is one job waiting in the user's print queue. Entries are
// immutable once received.
type QueueEntry struct {
	JobID       string    `json:"jobId"`
	Name        string    `json:"name"`
	Copies      int       `json:"copies"`
	Pages       int       `json:"pages"`
	Color       bool      `json:"color"`
	Price       float64   `json:"price"`
	PrinterName string    `json:"printerName"`
	SubmittedAt time.Time `json:"submittedAt"`
	RawDate     string    `json:"-"`
}

func newQueueEntry(item gateway.QueueItem) QueueEntry {
	return QueueEntry{
		JobID:       item.JobID,
		Name:        item.Name,
		Copies:      item.Copies,
		Pages:       item.Pages,
		Color:       item.Color,
		Price:       item.Price,
		PrinterName: item.PrinterName,
		SubmittedAt: parseQueueDate(item.Date),
		RawDate:     item.Date,
	}
}

func parseQueueDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range queueDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

// DisplayIsColor is "Yes" for color jobs and "No" otherwise.
func (q QueueEntry) DisplayIsColor() string {
	if q.Color {
		return "Yes"
	}
	return "No"
}

// DisplayPages is the total number of printed pages.
func (q QueueEntry) DisplayPages() int {
	return q.Copies * q.Pages
}

// DisplayPrice formats the job price.
func (q QueueEntry) DisplayPrice() string {
	return FormatMoney(q.Price)
}

// DisplayDate describes the submission time relative to now. Dates the
// backend reported in an unknown format are shown as received.
func (q QueueEntry) DisplayDate(now time.Time) string {
	if q.SubmittedAt.IsZero() {
		return q.RawDate
	}
	return humanize.RelTime(q.SubmittedAt, now, "ago", "from now")
}

// FormatMoney formats an amount of dollars with two decimals, e.g. "$12.50".
func FormatMoney(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

// pageEstimate is how many pages a budget pays for at pricePerPage.
func pageEstimate(budget, pricePerPage float64) int {
	return int(math.Round(budget / pricePerPage))
}

// Package types defines core data structures for mailcal.
package types

import "time"

// Email represents a cached Gmail message.
type Email struct {
	ID         string `json:"id"`
	Account    string `json:"account"`
	Sender     string `json:"sender"`
	Subject    string `json:"subject"`
	Body       string `json:"body,omitempty"`
	ReceivedAt string `json:"received_at"`
	FetchedAt  string `json:"fetched_at"`
	Processed  int    `json:"processed"`
}

// Candidate is the unconfirmed event produced by an extractor from a
// single email. It is never persisted directly; the pipeline either
// merges it into an existing Event or creates a new one from it.
type Candidate struct {
	Title          string         `json:"title"`
	Date           time.Time      `json:"date"`
	Location       string         `json:"location,omitempty"`
	Category       string         `json:"category"`
	Confidence     float64        `json:"confidence"`
	TrackingID     string         `json:"tracking_id,omitempty"`
	RawExtractions map[string]any `json:"raw_extractions,omitempty"`
}

// Event is a persisted calendar-like event extracted from an email.
type Event struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Date          string    `json:"date"`
	Location      string    `json:"location,omitempty"`
	Category      string    `json:"category"`
	Status        string    `json:"status"`
	TrackingID    string    `json:"tracking_id,omitempty"`
	ExtractedFrom string    `json:"extracted_from,omitempty"`
	CalendarID    string    `json:"calendar_id,omitempty"`
	EmbedProvider string    `json:"embed_provider,omitempty"`
	Embedding     []float32 `json:"-"`
	CreatedAt     string    `json:"created_at"`
	UpdatedAt     string    `json:"updated_at,omitempty"`
}

// Category constants.
const (
	CategoryDelivery     = "delivery"
	CategoryTravel       = "travel"
	CategoryAppointment  = "appointment"
	CategoryTicket       = "ticket"
	CategorySubscription = "subscription"
)

// ValidCategories is the set of allowed category values.
var ValidCategories = []string{
	CategoryDelivery, CategoryTravel, CategoryAppointment,
	CategoryTicket, CategorySubscription,
}

// IsValidCategory checks if a category string is valid.
func IsValidCategory(c string) bool {
	for _, v := range ValidCategories {
		if v == c {
			return true
		}
	}
	return false
}

// Status constants.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ValidStatuses is the set of allowed status values.
var ValidStatuses = []string{StatusPending, StatusApproved, StatusRejected}

// IsValidStatus checks if a status string is valid.
func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// SyncResult holds the result of syncing a single account.
type SyncResult struct {
	Account string `json:"account"`
	Fetched int    `json:"fetched"`
	Skipped int    `json:"skipped"`
	Error   string `json:"error,omitempty"`
}

// SyncSummary holds the result of syncing all accounts.
type SyncSummary struct {
	Accounts  []SyncResult `json:"accounts"`
	TotalNew  int          `json:"total_new"`
	TotalInDB int          `json:"total_in_db"`
}

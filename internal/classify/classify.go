// Package classify maps email text to an event category using fixed
// keyword rules. It is the deterministic half of categorization; the
// model-backed extractor asks the model for a category directly.
package classify

import (
	"strings"

	"mailcal/internal/types"
)

// rules are evaluated in order; the first rule with a matching keyword
// wins. Keyword tests are case-insensitive substring checks over the
// concatenated sender and body.
var rules = []struct {
	category string
	keywords []string
}{
	{types.CategoryDelivery, []string{"amazon", "fedex", "ups", "dhl", "delivery", "package", "shipment"}},
	{types.CategoryTravel, []string{"airline", "flight", "hotel", "booking.com", "expedia", "airbnb"}},
	{types.CategoryAppointment, []string{"appointment", "meeting", "reservation", "schedule"}},
	{types.CategoryTicket, []string{"ticket", "event", "concert", "movie", "show", "theater"}},
	{types.CategorySubscription, []string{"subscription", "renewal", "billing", "payment", "invoice"}},
}

// Classify returns the category for an email's sender and body.
// Pure function: identical inputs always yield the same category.
// Falls back to "appointment" when nothing matches.
func Classify(sender, body string) string {
	text := strings.ToLower(sender + " " + body)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				return r.category
			}
		}
	}
	return types.CategoryAppointment
}

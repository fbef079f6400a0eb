// Package calendar pushes approved events to Google Calendar.
package calendar

import (
	"context"
	"fmt"
	"time"

	"mailcal/internal/auth"
	"mailcal/internal/types"

	gcal "google.golang.org/api/calendar/v3"
)

// defaultDuration is used because extracted events carry a single
// timestamp, not a range.
const defaultDuration = time.Hour

// CreateEvent inserts an event into the account's primary calendar and
// returns the created calendar event id.
func CreateEvent(ctx context.Context, credentialsPath string, event *types.Event) (string, error) {
	svc, err := auth.LoadCalendarService(ctx, credentialsPath)
	if err != nil {
		return "", fmt.Errorf("calendar service: %w", err)
	}
	return insert(ctx, svc, event)
}

func insert(ctx context.Context, svc *gcal.Service, event *types.Event) (string, error) {
	start, err := time.Parse(time.RFC3339, event.Date)
	if err != nil {
		return "", fmt.Errorf("parse event date %q: %w", event.Date, err)
	}

	entry := &gcal.Event{
		Summary:     event.Title,
		Location:    event.Location,
		Description: description(event),
		Start:       &gcal.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: start.Add(defaultDuration).Format(time.RFC3339)},
	}

	created, err := svc.Events.Insert("primary", entry).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert calendar event: %w", err)
	}
	return created.Id, nil
}

func description(event *types.Event) string {
	desc := "Category: " + event.Category
	if event.TrackingID != "" {
		desc += "\nTracking: " + event.TrackingID
	}
	return desc
}

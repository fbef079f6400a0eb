// Package display provides terminal formatting for mailcal output.
package display

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"mailcal/internal/types"
)

var (
	// Styles
	Muted    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	Dim      = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af"))
	Bold     = lipgloss.NewStyle().Bold(true)
	Success  = lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a"))
	ErrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626"))

	categoryStyles = map[string]lipgloss.Style{
		types.CategoryDelivery:     lipgloss.NewStyle().Foreground(lipgloss.Color("#3b82f6")),
		types.CategoryTravel:       lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981")),
		types.CategoryAppointment:  lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b")),
		types.CategoryTicket:       lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")),
		types.CategorySubscription: lipgloss.NewStyle().Foreground(lipgloss.Color("#8b5cf6")),
	}

	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#d97706"))
	approvedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a"))
	rejectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af"))
)

// CategoryBadge returns a colored, fixed-width category label.
func CategoryBadge(category string) string {
	label := fmt.Sprintf("%-12s", category)
	if style, ok := categoryStyles[category]; ok {
		return style.Render(label)
	}
	return Dim.Render(label)
}

// StatusDot returns a colored dot for an event status.
func StatusDot(status string) string {
	switch status {
	case types.StatusPending:
		return pendingStyle.Render("○")
	case types.StatusApproved:
		return approvedStyle.Render("●")
	case types.StatusRejected:
		return rejectedStyle.Render("◌")
	default:
		return Dim.Render("·")
	}
}

// Confidence renders an extraction confidence as a percentage.
func Confidence(c float64) string {
	s := fmt.Sprintf("%3.0f%%", c*100)
	if c >= 0.85 {
		return Success.Render(s)
	}
	if c >= 0.6 {
		return pendingStyle.Render(s)
	}
	return Dim.Render(s)
}

// AccountLabel returns a short label for an account.
// Derives the label from the domain (e.g., "user@example.com" -> "example").
func AccountLabel(account string) string {
	if idx := strings.Index(account, "@"); idx > 0 {
		domain := account[idx+1:]
		if dotIdx := strings.Index(domain, "."); dotIdx > 0 {
			return domain[:dotIdx]
		}
		return domain
	}
	return account
}

// TimeAgo formats an ISO date string as a relative time.
func TimeAgo(isoDate string) string {
	if isoDate == "" {
		return ""
	}

	var t time.Time
	var err error
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05Z", "2006-01-02 15:04:05", time.RFC3339Nano} {
		t, err = time.Parse(layout, isoDate)
		if err == nil {
			break
		}
	}
	if err != nil {
		return isoDate[:min(10, len(isoDate))]
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

// EventDate formats a stored RFC 3339 event date for humans.
func EventDate(isoDate string) string {
	t, err := time.Parse(time.RFC3339, isoDate)
	if err != nil {
		return isoDate
	}
	return t.Format("Mon, Jan 2 2006 15:04")
}

// Truncate shortens a string to maxLen, adding ellipsis if needed.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// SuccessMsg prints a green checkmark + message.
func SuccessMsg(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(Success.Render("✓") + " " + msg)
}

// ErrorMsg prints a red X + message to stderr.
func ErrorMsg(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, ErrStyle.Render("✗")+" "+msg)
}

// Header prints a section header.
func Header(title string) {
	fmt.Println(Bold.Render(title))
}

// EventLine prints a one-line event row for list output.
func EventLine(e *types.Event) {
	tracking := ""
	if e.TrackingID != "" {
		tracking = Dim.Render(e.TrackingID)
	}
	fmt.Printf("  %s %-10s %s %-40s %-18s %s\n",
		StatusDot(e.Status),
		Truncate(e.ID, 10),
		CategoryBadge(e.Category),
		Truncate(e.Title, 40),
		EventDate(e.Date),
		tracking,
	)
}

// EventCard prints a multi-line event detail block.
func EventCard(e *types.Event) {
	fmt.Printf("%s %s\n", StatusDot(e.Status), Bold.Render(e.Title))
	fmt.Printf("  ID:       %s\n", e.ID)
	fmt.Printf("  Date:     %s\n", EventDate(e.Date))
	fmt.Printf("  Category: %s\n", CategoryBadge(e.Category))
	fmt.Printf("  Status:   %s\n", e.Status)
	if e.Location != "" {
		fmt.Printf("  Location: %s\n", e.Location)
	}
	if e.TrackingID != "" {
		fmt.Printf("  Tracking: %s\n", e.TrackingID)
	}
	if e.CalendarID != "" {
		fmt.Printf("  Calendar: %s\n", Dim.Render(e.CalendarID))
	}
	if e.ExtractedFrom != "" {
		fmt.Printf("  Source:   %s\n", Dim.Render(e.ExtractedFrom))
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

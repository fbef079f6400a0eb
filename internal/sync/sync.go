// Package sync fetches emails from Gmail into the local store.
package sync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"mailcal/internal/auth"
	"mailcal/internal/db"
	"mailcal/internal/gmail"
	"mailcal/internal/types"
)

// DiscoverAccounts finds accounts by scanning for */credentials.json
// directories in the project root. Returns email addresses (directory names).
func DiscoverAccounts(projectRoot string) []string {
	entries, err := os.ReadDir(projectRoot)
	if err != nil {
		return nil
	}

	var accounts []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		// Look for directories that contain credentials.json and look like email addresses.
		if !strings.Contains(name, "@") {
			continue
		}
		credPath := filepath.Join(projectRoot, name, "credentials.json")
		if _, err := os.Stat(credPath); err == nil {
			accounts = append(accounts, name)
		}
	}

	sort.Strings(accounts)
	return accounts
}

// toGmailDate converts an ISO date to Gmail after: format.
func toGmailDate(isoDate string) string {
	for _, layout := range []string{time.RFC3339, time.RFC3339Nano, "2006-01-02T15:04:05Z"} {
		if t, err := time.Parse(layout, isoDate); err == nil {
			return t.Format("2006/01/02")
		}
	}
	return ""
}

// SyncAccount fetches new emails for a single account. Missing
// credentials or auth failures are reported in the result rather than
// aborting a multi-account sync.
func SyncAccount(store *db.DB, projectRoot, account string, forceFull, includeSpam bool, maxResults int64, quiet bool) (*types.SyncResult, error) {
	result := &types.SyncResult{Account: account}
	ctx := context.Background()

	credPath := filepath.Join(projectRoot, account, "credentials.json")
	if _, err := os.Stat(credPath); err != nil {
		result.Error = "credentials not found"
		if !quiet {
			fmt.Fprintf(os.Stderr, "  ! %s — credentials not found, skipping\n", account)
		}
		return result, nil
	}

	svc, err := auth.LoadGmailService(ctx, credPath)
	if err != nil {
		result.Error = fmt.Sprintf("auth failed: %v", err)
		if !quiet {
			fmt.Fprintf(os.Stderr, "  ! %s — auth failed: %v\n", account, err)
		}
		return result, nil
	}

	// Determine search window.
	var query string
	latestDate := store.LatestEmailDate(account)

	if !forceFull && latestDate != "" {
		gmailDate := toGmailDate(latestDate)
		if gmailDate != "" {
			query = "after:" + gmailDate
			if !quiet {
				fmt.Printf("\n  %s — incremental (after %s)\n", account, gmailDate)
			}
		}
	}
	if query == "" {
		query = "newer_than:3d"
		if !quiet {
			fmt.Printf("\n  %s — full sync (last 72h)\n", account)
		}
	}

	// Only sync inbox by default (excludes drafts, sent-only, spam, trash).
	if !includeSpam {
		query += " in:inbox"
	}

	results, err := gmail.Search(svc, query, maxResults)
	if err != nil {
		result.Error = fmt.Sprintf("search failed: %v", err)
		if !quiet {
			fmt.Fprintf(os.Stderr, "  ! search failed: %v\n", err)
		}
		return result, nil
	}

	// Filter already-synced.
	var newMessages []gmail.MessageSummary
	for _, r := range results {
		if !store.EmailExists(r.ID) {
			newMessages = append(newMessages, r)
		}
	}

	if !quiet {
		fmt.Printf("  Found %d results, %d new\n", len(results), len(newMessages))
	}

	if len(newMessages) == 0 {
		result.Skipped = len(results)
		if !quiet {
			fmt.Printf("  ✓ 0 new, %d already synced\n", len(results))
		}
		return result, nil
	}

	// Fetch full content for new messages.
	now := time.Now().UTC().Format(time.RFC3339)

	for i, msg := range newMessages {
		full, err := gmail.ReadFull(svc, msg.ID)
		if err != nil {
			if !quiet {
				fmt.Fprintf(os.Stderr, "  ! failed to read %s: %v\n", msg.ID, err)
			}
			continue
		}

		sender := full.From
		if sender == "" {
			sender = msg.From
		}
		subject := full.Subject
		if subject == "" {
			subject = msg.Subject
		}
		receivedAt := full.ReceivedAt
		if receivedAt == "" {
			receivedAt = now
		}

		e := &types.Email{
			ID:         full.ID,
			Account:    account,
			Sender:     sender,
			Subject:    subject,
			Body:       full.Body,
			ReceivedAt: receivedAt,
			FetchedAt:  now,
		}

		if err := store.InsertEmail(e); err == nil {
			result.Fetched++
		}

		if !quiet {
			fmt.Fprintf(os.Stdout, "  Fetching %d/%d...\r", i+1, len(newMessages))
		}
	}

	result.Skipped = len(results) - len(newMessages)
	if !quiet {
		fmt.Printf("  ✓ %d new, %d already synced              \n", result.Fetched, result.Skipped)
	}

	return result, nil
}

// Package db provides SQLite storage for mailcal.
package db

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mailcal/internal/types"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite connection for mailcal operations.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens (or creates) a mailcal database at the given path.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}

	conn, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec(Schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &DB{conn: conn, path: dbPath}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.conn != nil {
		return d.conn.Close()
	}
	return nil
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.path
}

// GenID generates a random 16-character hex ID.
func GenID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

// Now returns the current time as an ISO 8601 string.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// DiscoverDB finds the mailcal database by walking up from cwd.
// Returns the path to .mailcal/mail.db or empty string if not found.
func DiscoverDB() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, ".mailcal", "mail.db")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// FindProjectRoot walks up from cwd looking for a .git directory.
func FindProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// --- Email operations ---

// InsertEmail inserts an email, ignoring duplicates.
func (d *DB) InsertEmail(e *types.Email) error {
	_, err := d.conn.Exec(`
		INSERT OR IGNORE INTO emails
			(id, account, sender, subject, body, received_at, fetched_at, processed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Account, e.Sender, e.Subject, e.Body, e.ReceivedAt, e.FetchedAt, e.Processed,
	)
	return err
}

// EmailExists checks if an email ID already exists.
func (d *DB) EmailExists(id string) bool {
	var n int
	d.conn.QueryRow("SELECT 1 FROM emails WHERE id = ?", id).Scan(&n)
	return n == 1
}

// GetEmail returns an email by ID, or nil if not found.
func (d *DB) GetEmail(id string) (*types.Email, error) {
	e := &types.Email{}
	var body sql.NullString
	err := d.conn.QueryRow(`
		SELECT id, account, sender, subject, body, received_at, fetched_at, processed
		FROM emails WHERE id = ?`, id).Scan(
		&e.ID, &e.Account, &e.Sender, &e.Subject, &body, &e.ReceivedAt, &e.FetchedAt, &e.Processed,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	e.Body = body.String
	return e, nil
}

// UnprocessedEmails returns emails that have not been run through the
// extraction pipeline, oldest first so events are created in arrival
// order.
func (d *DB) UnprocessedEmails(limit int) ([]*types.Email, error) {
	query := `
		SELECT id, account, sender, subject, body, received_at, fetched_at, processed
		FROM emails
		WHERE processed = 0
		ORDER BY received_at ASC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := d.conn.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEmails(rows)
}

// ListEmails returns the most recent emails, optionally account-filtered.
func (d *DB) ListEmails(account string, limit int) ([]*types.Email, error) {
	query := `
		SELECT id, account, sender, subject, body, received_at, fetched_at, processed
		FROM emails`
	var args []any
	if account != "" {
		query += " WHERE account = ?"
		args = append(args, account)
	}
	query += " ORDER BY received_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEmails(rows)
}

// MarkProcessed flags an email as run through the pipeline.
func (d *DB) MarkProcessed(id string) error {
	res, err := d.conn.Exec("UPDATE emails SET processed = 1 WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("email %q not found", id)
	}
	return nil
}

// LatestEmailDate returns the most recent received_at for an account.
func (d *DB) LatestEmailDate(account string) string {
	var date sql.NullString
	d.conn.QueryRow("SELECT MAX(received_at) FROM emails WHERE account = ?", account).Scan(&date)
	if date.Valid {
		return date.String
	}
	return ""
}

// LatestFetchedAt returns the most recent fetched_at for an account.
func (d *DB) LatestFetchedAt(account string) string {
	var t sql.NullString
	d.conn.QueryRow("SELECT MAX(fetched_at) FROM emails WHERE account = ?", account).Scan(&t)
	if t.Valid {
		return t.String
	}
	return ""
}

// EmailCount returns the total number of emails.
func (d *DB) EmailCount() int {
	var n int
	d.conn.QueryRow("SELECT COUNT(*) FROM emails").Scan(&n)
	return n
}

// EmailCountByAccount returns email count for a specific account.
func (d *DB) EmailCountByAccount(account string) int {
	var n int
	d.conn.QueryRow("SELECT COUNT(*) FROM emails WHERE account = ?", account).Scan(&n)
	return n
}

// UnprocessedCount returns the number of emails awaiting extraction.
func (d *DB) UnprocessedCount() int {
	var n int
	d.conn.QueryRow("SELECT COUNT(*) FROM emails WHERE processed = 0").Scan(&n)
	return n
}

// Accounts returns distinct email accounts.
func (d *DB) Accounts() []string {
	rows, err := d.conn.Query("SELECT DISTINCT account FROM emails ORDER BY account")
	if err != nil {
		return nil
	}
	defer rows.Close()
	var accs []string
	for rows.Next() {
		var a string
		rows.Scan(&a)
		accs = append(accs, a)
	}
	return accs
}

func scanEmails(rows *sql.Rows) ([]*types.Email, error) {
	var result []*types.Email
	for rows.Next() {
		e := &types.Email{}
		var body sql.NullString
		if err := rows.Scan(
			&e.ID, &e.Account, &e.Sender, &e.Subject, &body,
			&e.ReceivedAt, &e.FetchedAt, &e.Processed,
		); err != nil {
			return nil, err
		}
		e.Body = body.String
		result = append(result, e)
	}
	return result, rows.Err()
}

// --- Event operations ---

const eventColumns = `id, title, date, location, category, status, tracking_id,
       extracted_from, calendar_id, embed_provider, embedding, created_at, updated_at`

// InsertEvent persists a new event. ID and CreatedAt are assigned here.
func (d *DB) InsertEvent(e *types.Event) error {
	if e.ID == "" {
		e.ID = GenID()
	}
	e.CreatedAt = Now()
	if e.Status == "" {
		e.Status = types.StatusPending
	}

	_, err := d.conn.Exec(`
		INSERT INTO events
			(id, title, date, location, category, status, tracking_id,
			 extracted_from, calendar_id, embed_provider, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Date, nullStr(e.Location), e.Category, e.Status,
		nullStr(e.TrackingID), nullStr(e.ExtractedFrom), nullStr(e.CalendarID),
		nullStr(e.EmbedProvider), marshalVector(e.Embedding), e.CreatedAt,
	)
	return err
}

// UpdateEvent rewrites an event's extracted fields and drops the cached
// embedding, which is stale once the text changes.
func (d *DB) UpdateEvent(e *types.Event) error {
	e.UpdatedAt = Now()
	e.EmbedProvider = ""
	e.Embedding = nil
	res, err := d.conn.Exec(`
		UPDATE events SET
			title = ?, date = ?, location = ?, category = ?, tracking_id = ?,
			embed_provider = NULL, embedding = NULL, updated_at = ?
		WHERE id = ?`,
		e.Title, e.Date, nullStr(e.Location), e.Category, nullStr(e.TrackingID),
		e.UpdatedAt, e.ID,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("event %q not found", e.ID)
	}
	return nil
}

// UpdateEventStatus updates the status of an event.
func (d *DB) UpdateEventStatus(id, status string) error {
	res, err := d.conn.Exec(
		"UPDATE events SET status = ?, updated_at = ? WHERE id = ?",
		status, Now(), id,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("event %q not found", id)
	}
	return nil
}

// SetCalendarID records the Google Calendar event id after a push.
func (d *DB) SetCalendarID(id, calendarID string) error {
	_, err := d.conn.Exec(
		"UPDATE events SET calendar_id = ?, updated_at = ? WHERE id = ?",
		calendarID, Now(), id,
	)
	return err
}

// SetEmbedding caches an event's embedding vector so matching does not
// recompute it on every attempt.
func (d *DB) SetEmbedding(id, provider string, vec []float32) error {
	_, err := d.conn.Exec(
		"UPDATE events SET embed_provider = ?, embedding = ? WHERE id = ?",
		provider, marshalVector(vec), id,
	)
	return err
}

// GetEvent returns an event by ID (supports prefix match).
func (d *DB) GetEvent(id string) (*types.Event, error) {
	e, err := d.getEventByExactID(id)
	if err != nil {
		return nil, err
	}
	if e != nil {
		return e, nil
	}

	rows, err := d.conn.Query(
		"SELECT "+eventColumns+" FROM events WHERE id LIKE ?", id+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("event %q not found", id)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
		}
		return nil, fmt.Errorf("ambiguous ID %q, matches: %s", id, strings.Join(ids, ", "))
	}
}

func (d *DB) getEventByExactID(id string) (*types.Event, error) {
	rows, err := d.conn.Query(
		"SELECT "+eventColumns+" FROM events WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

// Events returns all events in creation order. This is the snapshot the
// matcher scans; caller-supplied order is the tie-break order.
func (d *DB) Events() ([]*types.Event, error) {
	rows, err := d.conn.Query(
		"SELECT " + eventColumns + " FROM events ORDER BY created_at ASC, id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListEvents returns events filtered by status and/or category, newest
// event date first.
func (d *DB) ListEvents(status, category string, limit int) ([]*types.Event, error) {
	query := "SELECT " + eventColumns + " FROM events"

	var conditions []string
	var args []any
	if status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, status)
	}
	if category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, category)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// EventCountByStatus returns counts grouped by status.
func (d *DB) EventCountByStatus() (map[string]int, error) {
	rows, err := d.conn.Query("SELECT status, COUNT(*) FROM events GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := map[string]int{"pending": 0, "approved": 0, "rejected": 0}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// EventCountByCategory returns counts grouped by category.
func (d *DB) EventCountByCategory() (map[string]int, error) {
	rows, err := d.conn.Query("SELECT category, COUNT(*) FROM events GROUP BY category")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int, len(types.ValidCategories))
	for _, c := range types.ValidCategories {
		counts[c] = 0
	}
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		counts[category] = count
	}
	return counts, rows.Err()
}

func scanEvents(rows *sql.Rows) ([]*types.Event, error) {
	var result []*types.Event
	for rows.Next() {
		e := &types.Event{}
		var location, trackingID, extractedFrom, calendarID, embedProvider, embedding, updatedAt sql.NullString
		if err := rows.Scan(
			&e.ID, &e.Title, &e.Date, &location, &e.Category, &e.Status, &trackingID,
			&extractedFrom, &calendarID, &embedProvider, &embedding, &e.CreatedAt, &updatedAt,
		); err != nil {
			return nil, err
		}
		e.Location = location.String
		e.TrackingID = trackingID.String
		e.ExtractedFrom = extractedFrom.String
		e.CalendarID = calendarID.String
		e.EmbedProvider = embedProvider.String
		e.Embedding = unmarshalVector(embedding.String)
		e.UpdatedAt = updatedAt.String
		result = append(result, e)
	}
	return result, rows.Err()
}

// marshalVector encodes an embedding as JSON for TEXT storage.
func marshalVector(vec []float32) any {
	if len(vec) == 0 {
		return nil
	}
	data, err := json.Marshal(vec)
	if err != nil {
		return nil
	}
	return string(data)
}

func unmarshalVector(s string) []float32 {
	if s == "" {
		return nil
	}
	var vec []float32
	if err := json.Unmarshal([]byte(s), &vec); err != nil {
		return nil
	}
	return vec
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

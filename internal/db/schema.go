package db

// Schema is the DDL for the mailcal database.
const Schema = `
CREATE TABLE IF NOT EXISTS emails (
    id           TEXT PRIMARY KEY,
    account      TEXT NOT NULL,
    sender       TEXT NOT NULL,
    subject      TEXT NOT NULL,
    body         TEXT,
    received_at  TEXT NOT NULL,
    fetched_at   TEXT NOT NULL,
    processed    INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS events (
    id              TEXT PRIMARY KEY,
    title           TEXT NOT NULL,
    date            TEXT NOT NULL,
    location        TEXT,
    category        TEXT NOT NULL DEFAULT 'appointment',
    status          TEXT NOT NULL DEFAULT 'pending',
    tracking_id     TEXT,
    extracted_from  TEXT,
    calendar_id     TEXT,
    embed_provider  TEXT,
    embedding       TEXT,
    created_at      TEXT NOT NULL,
    updated_at      TEXT
);

CREATE INDEX IF NOT EXISTS idx_emails_account ON emails(account);
CREATE INDEX IF NOT EXISTS idx_emails_processed ON emails(processed);
CREATE INDEX IF NOT EXISTS idx_emails_received ON emails(received_at DESC);
CREATE INDEX IF NOT EXISTS idx_events_status ON events(status);
CREATE INDEX IF NOT EXISTS idx_events_category ON events(category);
CREATE INDEX IF NOT EXISTS idx_events_tracking ON events(tracking_id);
CREATE INDEX IF NOT EXISTS idx_events_date ON events(date);
`

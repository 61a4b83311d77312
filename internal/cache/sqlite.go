package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/mailmind/internal/identity"
	"github.com/nhle/mailmind/internal/model"
)

// SQLiteCache implements Cache using a local SQLite database.
type SQLiteCache struct {
	db *sqlx.DB
}

// NewSQLiteCache opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteCache(dbPath string) (*SQLiteCache, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Each connection to ":memory:" would open a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	c := &SQLiteCache{db: db}
	if err := c.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return c, nil
}

// Close closes the underlying database connection.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (c *SQLiteCache) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := c.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = c.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := c.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

type emailRow struct {
	ID         string `db:"id"`
	Position   int    `db:"position"`
	Sender     string `db:"sender"`
	Subject    string `db:"subject"`
	Body       string `db:"body"`
	Timestamp  string `db:"timestamp"`
	Category   string `db:"category"`
	Actions    string `db:"actions"`
	Summary    string `db:"summary"`
	DraftReply string `db:"draft_reply"`
}

type draftRow struct {
	ID        string `db:"id"`
	Position  int    `db:"position"`
	Recipient string `db:"recipient"`
	Subject   string `db:"subject"`
	Body      string `db:"body"`
	Timestamp string `db:"timestamp"`
}

// SaveEmails replaces the email snapshot in a single transaction.
func (c *SQLiteCache) SaveEmails(ctx context.Context, emails []model.Email) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM emails"); err != nil {
		return fmt.Errorf("clearing emails: %w", err)
	}

	const query = `
		INSERT OR REPLACE INTO emails (
			id, position, sender, subject, body,
			timestamp, category, actions, summary, draft_reply
		) VALUES (
			:id, :position, :sender, :subject, :body,
			:timestamp, :category, :actions, :summary, :draft_reply
		)`

	for i, e := range emails {
		actions, err := json.Marshal(e.Actions)
		if err != nil {
			return fmt.Errorf("marshaling actions for email %s: %w", e.ID, err)
		}
		row := emailRow{
			ID:         e.ID,
			Position:   i,
			Sender:     e.Sender,
			Subject:    e.Subject,
			Body:       e.Body,
			Timestamp:  e.Timestamp,
			Category:   string(e.Category),
			Actions:    string(actions),
			Summary:    e.Summary,
			DraftReply: e.DraftReply,
		}
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			return fmt.Errorf("inserting email %s: %w", e.ID, err)
		}
	}

	if err := markSynced(ctx, tx, SnapshotEmails); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadEmails returns the saved emails in their saved order.
func (c *SQLiteCache) LoadEmails(ctx context.Context) ([]model.Email, error) {
	var rows []emailRow
	if err := c.db.SelectContext(ctx, &rows, "SELECT * FROM emails ORDER BY position"); err != nil {
		return nil, fmt.Errorf("querying emails: %w", err)
	}

	emails := make([]model.Email, 0, len(rows))
	for _, r := range rows {
		actions := []model.Action{}
		if r.Actions != "" {
			if err := json.Unmarshal([]byte(r.Actions), &actions); err != nil {
				return nil, fmt.Errorf("unmarshaling actions for email %s: %w", r.ID, err)
			}
		}
		if actions == nil {
			actions = []model.Action{}
		}
		emails = append(emails, model.Email{
			ID:         r.ID,
			Sender:     r.Sender,
			Subject:    r.Subject,
			Body:       r.Body,
			Timestamp:  r.Timestamp,
			Category:   model.ParseCategory(r.Category),
			Actions:    actions,
			Summary:    r.Summary,
			DraftReply: r.DraftReply,
			Time:       identity.ParseTimestamp(r.Timestamp),
		})
	}
	return emails, nil
}

// SaveDrafts replaces the drafts snapshot in a single transaction.
func (c *SQLiteCache) SaveDrafts(ctx context.Context, drafts []model.Draft) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM drafts"); err != nil {
		return fmt.Errorf("clearing drafts: %w", err)
	}

	const query = `
		INSERT OR REPLACE INTO drafts (id, position, recipient, subject, body, timestamp)
		VALUES (:id, :position, :recipient, :subject, :body, :timestamp)`

	for i, d := range drafts {
		row := draftRow{
			ID:        d.ID,
			Position:  i,
			Recipient: d.Recipient,
			Subject:   d.Subject,
			Body:      d.Body,
			Timestamp: d.Timestamp,
		}
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			return fmt.Errorf("inserting draft %s: %w", d.ID, err)
		}
	}

	if err := markSynced(ctx, tx, SnapshotDrafts); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadDrafts returns the saved drafts in their saved order.
func (c *SQLiteCache) LoadDrafts(ctx context.Context) ([]model.Draft, error) {
	var rows []draftRow
	if err := c.db.SelectContext(ctx, &rows, "SELECT * FROM drafts ORDER BY position"); err != nil {
		return nil, fmt.Errorf("querying drafts: %w", err)
	}

	drafts := make([]model.Draft, 0, len(rows))
	for _, r := range rows {
		drafts = append(drafts, model.Draft{
			ID:        r.ID,
			Recipient: r.Recipient,
			Subject:   r.Subject,
			Body:      r.Body,
			Timestamp: r.Timestamp,
			Time:      identity.ParseTimestamp(r.Timestamp),
		})
	}
	return drafts, nil
}

// SyncedAt returns when the named snapshot was last saved.
func (c *SQLiteCache) SyncedAt(ctx context.Context, name string) (time.Time, error) {
	var unix int64
	err := c.db.GetContext(ctx, &unix, "SELECT synced_at FROM sync_meta WHERE name = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("reading sync time for %s: %w", name, err)
	}
	return time.Unix(unix, 0), nil
}

func markSynced(ctx context.Context, tx *sqlx.Tx, name string) error {
	_, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO sync_meta (name, synced_at) VALUES (?, ?)",
		name, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("recording sync time for %s: %w", name, err)
	}
	return nil
}

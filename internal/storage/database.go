package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/conorfennell/orgdrill/internal/domain"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// timestampLayout is RFC 3339 in UTC with a fixed nanosecond width.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// DB represents a wrapper around the SQL database connection.
type DB struct {
	conn     *sql.DB
	validate *validator.Validate
}

// Open creates a new database connection and ensures the schema is up to date.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w: %w", domain.ErrStoreUnavailable, err)
	}

	// A single connection keeps ":memory:" databases shared and matches the
	// single-writer model of a review run.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w: %w", domain.ErrStoreUnavailable, err)
	}

	// Execute the schema to create tables if they don't exist.
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w: %w", domain.ErrStoreUnavailable, err)
	}

	return &DB{conn: db, validate: validator.New(validator.WithRequiredStructEnabled())}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// SaveRating appends a rating. Ratings with an invalid item id or outcome are
// rejected before touching the database.
func (db *DB) SaveRating(ctx context.Context, r domain.Rating) error {
	if err := db.check(r); err != nil {
		return err
	}

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO ratings (outcome, item_id, timestamp)
		VALUES (?, ?, ?)
	`,
		string(r.Outcome),
		r.ItemID,
		r.Date.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save rating for %s: %w: %w", r.ItemID, domain.ErrStoreUnavailable, err)
	}
	return nil
}

// RatingsFor returns every rating of an item, oldest first.
func (db *DB) RatingsFor(ctx context.Context, itemID string) ([]domain.Rating, error) {
	if err := db.validate.Var(itemID, "required,uuid"); err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidID, itemID)
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT outcome, item_id, timestamp
		FROM ratings WHERE item_id = ?
		ORDER BY timestamp, rowid
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ratings for %s: %w: %w", itemID, domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var ratings []domain.Rating
	for rows.Next() {
		var (
			r       domain.Rating
			outcome string
			ts      string
		)
		if err := rows.Scan(&outcome, &r.ItemID, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan rating row for %s: %w: %w", itemID, domain.ErrStoreUnavailable, err)
		}
		if err := r.Outcome.UnmarshalText([]byte(outcome)); err != nil {
			return nil, fmt.Errorf("rating row for %s: %w", itemID, err)
		}
		if r.Date, err = parseTimestamp(ts); err != nil {
			return nil, fmt.Errorf("rating row for %s: %w: bad timestamp %q", itemID, domain.ErrInvalidRating, ts)
		}
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ratings for %s: %w: %w", itemID, domain.ErrStoreUnavailable, err)
	}
	return ratings, nil
}

func (db *DB) check(r domain.Rating) error {
	if r.Date.IsZero() {
		return fmt.Errorf("%w: rating for %s has no date", domain.ErrInvalidRating, r.ItemID)
	}
	err := db.validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", domain.ErrInvalidRating, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Field() == "ItemID" {
			return fmt.Errorf("%w: %q", domain.ErrInvalidID, r.ItemID)
		}
		fields = append(fields, fe.Field())
	}
	return fmt.Errorf("%w: %q (%s)", domain.ErrInvalidRating, string(r.Outcome), strings.Join(fields, ", "))
}

func parseTimestamp(ts string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, ts)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, ts)
}

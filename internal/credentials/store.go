package credentials

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/matej-podzemny/hotdesk-helper/pkg/logger"
)

// Storage keys, one per form field. They match the names the original
// browser build used so an exported settings file stays recognizable.
const (
	keyEmail = "hotdesk_email"
	keySeat  = "hotdesk_seat"
	keyToken = "hotdesk_token"
)

// Stored is the trio of persisted form fields. Absent values are empty
// strings.
type Stored struct {
	Email       string `json:"email"`
	SeatNumber  string `json:"seat_number"`
	BearerToken string `json:"bearer_token"`
}

// Store persists credentials in a local sqlite file so the form survives
// restarts. Selected dates are deliberately not persisted.
type Store struct {
	db  *sql.DB
	log *logger.Logger
}

func NewStore(path string, log *logger.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open credentials db: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize credentials db: %w", err)
	}

	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads all stored fields. A missing key leaves its field empty.
func (s *Store) Load(ctx context.Context) (Stored, error) {
	var stored Stored

	fields := map[string]*string{
		keyEmail: &stored.Email,
		keySeat:  &stored.SeatNumber,
		keyToken: &stored.BearerToken,
	}

	for key, target := range fields {
		var value string
		err := s.db.QueryRowContext(ctx,
			"SELECT value FROM settings WHERE key = ?", key).Scan(&value)
		switch {
		case err == sql.ErrNoRows:
			// leave empty
		case err != nil:
			return Stored{}, fmt.Errorf("failed to read %s: %w", key, err)
		default:
			*target = value
		}
	}

	return stored, nil
}

// Save writes all fields. An empty value removes the stored entry, matching
// how the browser build cleared localStorage keys.
func (s *Store) Save(ctx context.Context, stored Stored) error {
	fields := map[string]string{
		keyEmail: stored.Email,
		keySeat:  stored.SeatNumber,
		keyToken: stored.BearerToken,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin save: %w", err)
	}
	defer tx.Rollback()

	for key, value := range fields {
		if value == "" {
			if _, err := tx.ExecContext(ctx,
				"DELETE FROM settings WHERE key = ?", key); err != nil {
				return fmt.Errorf("failed to clear %s: %w", key, err)
			}
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO settings (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, value); err != nil {
			return fmt.Errorf("failed to store %s: %w", key, err)
		}
	}

	return tx.Commit()
}

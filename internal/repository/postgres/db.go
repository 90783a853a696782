package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/flowplan/backend-go/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"golang.org/x/sync/semaphore"
)

// maxBulkReads bounds how many heavyweight bulk queries run at once.
const maxBulkReads = 10

type DB struct {
	*sqlx.DB
	sem *semaphore.Weighted
}

var (
	dbInstance *DB
	once       sync.Once
)

// NewDB creates a new database connection pool
func NewDB(cfg *config.DatabaseConfig) (*DB, error) {
	var err error
	once.Do(func() {
		connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

		var db *sqlx.DB
		db, err = sqlx.Connect("postgres", connStr)
		if err != nil {
			return
		}

		// Configure connection pool
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		dbInstance = Wrap(db)
	})

	return dbInstance, err
}

// Wrap adapts an already-open sqlx handle, e.g. one built on the pgx stdlib
// driver by the CLI.
func Wrap(db *sqlx.DB) *DB {
	return &DB{
		DB:  db,
		sem: semaphore.NewWeighted(maxBulkReads),
	}
}

// Acquire reserves a slot for a heavyweight read; pair with Release.
func (db *DB) Acquire(ctx context.Context) error {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("could not acquire read slot: %w", err)
	}
	return nil
}

// Release frees a slot taken by Acquire.
func (db *DB) Release() {
	db.sem.Release(1)
}

// Package testdb points database-backed tests at a disposable Postgres.
package testdb

import (
	"context"
	"errors"
	"os"

	"github.com/MikeRez0/storefront/internal/adapter/config"
	"github.com/MikeRez0/storefront/internal/adapter/storage"
)

const dsnEnv = "TEST_DATABASE_URI"

var ErrNoDatabase = errors.New(dsnEnv + " is not set")

type TestDBInstance struct {
	DSN string
	DB  *storage.DB
}

// NewTestDBInstance connects to the database named by TEST_DATABASE_URI and
// applies the migrations.
func NewTestDBInstance() (*TestDBInstance, error) {
	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		return nil, ErrNoDatabase
	}

	db, err := storage.NewDBStorage(context.Background(), &config.Database{DSN: dsn})
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, err
	}

	return &TestDBInstance{DSN: dsn, DB: db}, nil
}

// Reset empties every table between tests.
func (i *TestDBInstance) Reset(ctx context.Context) error {
	return i.DB.Truncate(ctx)
}

func (i *TestDBInstance) Down() {
	_ = i.DB.Truncate(context.Background())
	i.DB.Close()
}

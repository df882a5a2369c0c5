package storage

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/ledger-server/internal/config"
)

type Storage struct {
	DB     *sql.DB
	bobDB  bob.DB
	reader *Reader
}

func NewStorage(env *config.Config) *Storage {
	connStr := "postgres://" + env.PostgresUsername + ":" +
		env.PostgresPassword + "@" + env.PostgresAddress + ":" +
		env.PostgresPort + "/" + env.PostgresDB + "?sslmode=disable"

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		logrus.WithError(err).Fatal("storage.NewStorage.open")
	}

	bobDB := bob.NewDB(db)
	return &Storage{
		DB:     db,
		bobDB:  bobDB,
		reader: NewReader(bobDB),
	}
}

// Read returns the shared auto-commit reader.
func (s *Storage) Read() *Reader {
	return s.reader
}

// Write begins a database transaction and returns a Writer bound to it.
// The caller owns Commit/Rollback; every write through the Writer is part
// of one atomic unit.
func (s *Storage) Write(ctx context.Context) (*Writer, error) {
	tx, err := s.bobDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return NewWriter(tx), nil
}

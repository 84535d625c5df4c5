package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/banking-core/internal/config"
)

type Storage struct {
	DB   *sql.DB
	exec bob.DB
}

// NewStorage opens the sandbox database. The connection is not checked
// until first use.
func NewStorage(env *config.Config) (*Storage, error) {
	db, err := sql.Open("postgres", env.PostgresURL())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return &Storage{DB: db, exec: bob.NewDB(db)}, nil
}

func (s *Storage) Read() *Reader {
	return NewReader(s.exec)
}

// Write starts a database transaction. The caller must Commit or Rollback.
func (s *Storage) Write(ctx context.Context) (*Writer, error) {
	tx, err := s.exec.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	return NewWriter(tx), nil
}

// InTx runs fn in a transaction, committing when it returns nil.
func (s *Storage) InTx(ctx context.Context, fn func(*Writer) error) error {
	writer, err := s.Write(ctx)
	if err != nil {
		return err
	}

	if err := fn(writer); err != nil {
		if rbErr := writer.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := writer.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Storage) PingContext(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *Storage) Close() error {
	return s.DB.Close()
}

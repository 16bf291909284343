package storage

import (
	"context"

	"castella/internal/db"
)

// PostgresProvider keeps each client's items as rows of the console_storage table.
type PostgresProvider struct {
	pool *db.Pool
}

func NewPostgresProvider(pool *db.Pool) *PostgresProvider {
	return &PostgresProvider{pool: pool}
}

func (p *PostgresProvider) Open(clientID string) Storage {
	return &postgresStorage{pool: p.pool, clientID: clientID}
}

type postgresStorage struct {
	pool     *db.Pool
	clientID string
}

func (s *postgresStorage) Get(ctx context.Context, key string) (string, bool, error) {
	return s.pool.GetStorageItem(ctx, s.clientID, key)
}

func (s *postgresStorage) Set(ctx context.Context, key, value string) error {
	return s.pool.PutStorageItem(ctx, s.clientID, key, value)
}

func (s *postgresStorage) Delete(ctx context.Context, key string) error {
	return s.pool.DeleteStorageItem(ctx, s.clientID, key)
}

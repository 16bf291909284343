package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const createStorageTableSQL = `
create table if not exists console_storage (
    client_id  text        not null,
    key        text        not null,
    value      text        not null,
    updated_at timestamptz not null default now(),
    primary key (client_id, key)
);
`

const getStorageItemSQL = `
select value
from console_storage
where client_id = $1 and key = $2;
`

const putStorageItemSQL = `
insert into console_storage (client_id, key, value)
values ($1, $2, $3)
on conflict (client_id, key)
    do update set value = excluded.value, updated_at = now();
`

const deleteStorageItemSQL = `
delete from console_storage
where client_id = $1 and key = $2;
`

// EnsureStorageSchema creates the console_storage table when it does not exist yet.
func (p *Pool) EnsureStorageSchema(ctx context.Context) error {
	if p == nil {
		return errors.New("nil db pool")
	}
	if _, err := p.Exec(ctx, createStorageTableSQL); err != nil {
		return fmt.Errorf("create console_storage: %w", err)
	}
	return nil
}

func (p *Pool) GetStorageItem(ctx context.Context, clientID, key string) (string, bool, error) {
	if p == nil {
		return "", false, errors.New("nil db pool")
	}

	var value string
	err := p.QueryRow(ctx, getStorageItemSQL, clientID, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get storage item: %w", err)
	}
	return value, true, nil
}

func (p *Pool) PutStorageItem(ctx context.Context, clientID, key, value string) error {
	if p == nil {
		return errors.New("nil db pool")
	}
	if _, err := p.Exec(ctx, putStorageItemSQL, clientID, key, value); err != nil {
		return fmt.Errorf("put storage item: %w", err)
	}
	return nil
}

func (p *Pool) DeleteStorageItem(ctx context.Context, clientID, key string) error {
	if p == nil {
		return errors.New("nil db pool")
	}
	if _, err := p.Exec(ctx, deleteStorageItemSQL, clientID, key); err != nil {
		return fmt.Errorf("delete storage item: %w", err)
	}
	return nil
}

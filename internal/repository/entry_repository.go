package repository

import (
	"context"
	"database/sql"
	"errors"

	"directory/internal/models"
)

// ErrEntryExists - запись с таким _id уже есть в журнале
var ErrEntryExists = errors.New("entry with this id already exists")

const entriesSchema = `
	CREATE TABLE IF NOT EXISTS entries (
		seq         BIGSERIAL PRIMARY KEY,
		id          TEXT NOT NULL UNIQUE,
		entry       TEXT NOT NULL,
		description TEXT NOT NULL,
		slp_address TEXT NOT NULL,
		signature   TEXT NOT NULL,
		category    TEXT NOT NULL,
		balance     DOUBLE PRECISION NOT NULL,
		merit       DOUBLE PRECISION NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL
	)`

const entryColumns = `id, entry, description, slp_address, signature, category, balance, merit, created_at`

// EntryRepository - журнал записей каталога (только добавление)
//
// Порядок выдачи - порядок вставки (seq). UPDATE и DELETE не поддерживаются.
type EntryRepository struct {
	db *sql.DB
}

// NewEntryRepository создает новый экземпляр репозитория
func NewEntryRepository(db *sql.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// EnsureSchema создает таблицу журнала, если ее нет
func (r *EntryRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, entriesSchema)
	return err
}

// Append добавляет запись в конец журнала. ID и CreatedAt должны быть заполнены.
func (r *EntryRepository) Append(ctx context.Context, e *models.Entry) error {
	query := `
		INSERT INTO entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(
		ctx,
		query,
		e.ID,
		e.Entry,
		e.Description,
		e.SlpAddress,
		e.Signature,
		e.Category,
		e.Balance,
		e.Merit,
		e.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEntryExists
		}
		return err
	}

	return nil
}

// ListAll возвращает весь журнал в порядке вставки
func (r *EntryRepository) ListAll(ctx context.Context) ([]*models.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries
		ORDER BY seq`

	return r.list(ctx, query)
}

// ListByPrefix возвращает записи, _id которых начинается с prefix.
// Пустой prefix эквивалентен ListAll.
func (r *EntryRepository) ListByPrefix(ctx context.Context, prefix string) ([]*models.Entry, error) {
	if prefix == "" {
		return r.ListAll(ctx)
	}

	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE left(id, length($1)) = $1
		ORDER BY seq`

	return r.list(ctx, query, prefix)
}

// Count возвращает количество записей в журнале
func (r *EntryRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *EntryRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*models.Entry, 0)
	for rows.Next() {
		e := &models.Entry{}
		err := rows.Scan(
			&e.ID,
			&e.Entry,
			&e.Description,
			&e.SlpAddress,
			&e.Signature,
			&e.Category,
			&e.Balance,
			&e.Merit,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		// lib/pq отдает TIMESTAMPTZ в зоне сессии, _id считался от UTC
		e.CreatedAt = e.CreatedAt.UTC()
		entries = append(entries, e)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"

	"directory/internal/models"
)

// Ошибки репозитория черного списка
var (
	ErrBlacklistRecordNotFound = errors.New("blacklist record not found")
	ErrBlacklistRecordExists   = errors.New("hash already in blacklist")
)

const blacklistSchema = `
	CREATE TABLE IF NOT EXISTS blacklist (
		id         SERIAL PRIMARY KEY,
		hash       TEXT NOT NULL UNIQUE,
		reason     TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

// BlacklistRepository - работа с таблицей blacklist
//
// Записи создаются модерацией вне HTTP API (через directoryctl),
// сервис каталога только читает их.
type BlacklistRepository struct {
	db *sql.DB
}

// NewBlacklistRepository создает новый экземпляр репозитория
func NewBlacklistRepository(db *sql.DB) *BlacklistRepository {
	return &BlacklistRepository{db: db}
}

// EnsureSchema создает таблицу, если ее нет
func (r *BlacklistRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, blacklistSchema)
	return err
}

// Create добавляет hash в черный список
func (r *BlacklistRepository) Create(ctx context.Context, record *models.BlacklistRecord) error {
	query := `
		INSERT INTO blacklist (hash, reason, created_at)
		VALUES ($1, $2, $3)
		RETURNING id`

	record.CreatedAt = time.Now().UTC()

	err := r.db.QueryRowContext(
		ctx,
		query,
		record.Hash,
		record.Reason,
		record.CreatedAt,
	).Scan(&record.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrBlacklistRecordExists
		}
		return err
	}

	return nil
}

// Find возвращает весь черный список в порядке добавления
func (r *BlacklistRepository) Find(ctx context.Context) ([]*models.BlacklistRecord, error) {
	query := `
		SELECT id, hash, reason, created_at
		FROM blacklist
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*models.BlacklistRecord, 0)
	for rows.Next() {
		record := &models.BlacklistRecord{}
		err := rows.Scan(
			&record.ID,
			&record.Hash,
			&record.Reason,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// Exists проверяет наличие hash в черном списке
func (r *BlacklistRepository) Exists(ctx context.Context, hash string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM blacklist WHERE hash = $1)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, hash).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

// Delete удаляет hash из черного списка
func (r *BlacklistRepository) Delete(ctx context.Context, hash string) error {
	query := `DELETE FROM blacklist WHERE hash = $1`

	result, err := r.db.ExecContext(ctx, query, hash)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrBlacklistRecordNotFound
	}

	return nil
}

// Count возвращает количество записей в черном списке
func (r *BlacklistRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM blacklist`

	var count int
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// isUniqueViolation проверяет, является ли ошибка нарушением UNIQUE constraint
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	errStr := err.Error()
	return strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "23505")
}

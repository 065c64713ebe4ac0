// Package app собирает зависимости каталога из конфигурации.
// Используется сервером и directoryctl, чтобы конвейеры были одинаковыми.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"directory/internal/config"
	"directory/internal/docstore"
	"directory/internal/oracle"
	"directory/internal/repository"
	"directory/internal/service"
	"directory/pkg/retry"
	"directory/pkg/utils"
)

// App - собранные зависимости
type App struct {
	Config *config.Config
	DB     *sql.DB

	Entries   *repository.EntryRepository
	Blacklist *repository.BlacklistRepository
	Node      *docstore.Node
	Store     *docstore.DB
	Oracle    *oracle.Oracle

	EntryService     *service.EntryService
	BlacklistService *service.BlacklistService
}

// New подключается к базе, создает схемы и запускает узел хранилища
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := OpenDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:    cfg,
		DB:        db,
		Entries:   repository.NewEntryRepository(db),
		Blacklist: repository.NewBlacklistRepository(db),
	}

	if err := a.Blacklist.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure blacklist schema: %w", err)
	}

	a.Node = docstore.NewNode(cfg.Store.Name, a.Entries)
	if a.Store, err = a.Node.Start(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to start store node: %w", err)
	}

	a.Oracle = oracle.New(oracle.NewVerifier(), oracle.NewClient(OracleClientConfig(cfg.Oracle)))
	a.EntryService = service.NewEntryService(a.Oracle, a.Node, a.Blacklist)
	a.BlacklistService = service.NewBlacklistService(a.Blacklist)

	return a, nil
}

// Close останавливает узел и закрывает соединения с базой
func (a *App) Close() error {
	a.Node.Stop()
	return a.DB.Close()
}

// OpenDatabase создает подключение к базе данных
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	utils.Info("connected to database", utils.String("dsn", cfg.DSNWithoutPassword()))
	return db, nil
}

// OracleClientConfig переводит настройки оракула в конфигурацию клиента
func OracleClientConfig(cfg config.OracleConfig) oracle.ClientConfig {
	policy := retry.OracleDefaults()
	policy.Attempts = cfg.MaxRetries + 1
	if cfg.RetryBackoff > 0 {
		policy.BaseDelay = cfg.RetryBackoff
	}

	return oracle.ClientConfig{
		BaseURL:         cfg.BaseURL,
		TokenID:         cfg.TokenID,
		Timeout:         cfg.Timeout,
		RateLimit:       cfg.RateLimit,
		RateBurst:       cfg.RateBurst,
		Retry:           policy,
		BreakerFailures: uint32(cfg.BreakerFailures),
		BreakerTimeout:  cfg.BreakerTimeout,
	}
}

package service

import (
	"context"

	"directory/internal/docstore"
	"directory/internal/models"
	"directory/internal/oracle"
	"directory/internal/repository"
	"directory/internal/websocket"
)

// SignatureOracle проверяет подпись записи и сообщает баланс и merit адреса
type SignatureOracle interface {
	VerifySignature(e *models.Entry) bool
	GetBalance(ctx context.Context, address string) (float64, error)
	GetMerit(ctx context.Context, address string) (float64, error)
}

// StoreHandle - открытое хранилище записей
type StoreHandle = docstore.Handle

// StoreAccessor выдает открытое хранилище
type StoreAccessor interface {
	GetNode(ctx context.Context) (StoreHandle, error)
}

// BlacklistStore - чтение черного списка
type BlacklistStore interface {
	Find(ctx context.Context) ([]*models.BlacklistRecord, error)
}

// BlacklistRepositoryInterface определяет интерфейс репозитория черного списка
type BlacklistRepositoryInterface interface {
	BlacklistStore
	Create(ctx context.Context, record *models.BlacklistRecord) error
	Exists(ctx context.Context, hash string) (bool, error)
	Delete(ctx context.Context, hash string) error
	Count(ctx context.Context) (int, error)
}

// EntryNotifier получает уведомления о добавленных записях
type EntryNotifier interface {
	BroadcastEntry(e *models.Entry)
}

var (
	_ SignatureOracle              = (*oracle.Oracle)(nil)
	_ StoreAccessor                = (*docstore.Node)(nil)
	_ BlacklistRepositoryInterface = (*repository.BlacklistRepository)(nil)
	_ EntryNotifier                = (*websocket.Hub)(nil)
)

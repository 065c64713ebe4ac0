// Package docstore предоставляет доступ к реплицируемому журналу записей каталога.
//
// Журнал работает как документное хранилище, индексированное по _id:
// записи только добавляются, _id вычисляется как CIDv1 (raw, sha2-256)
// от JSON-документа записи. Репликация журнала между узлами выполняется
// средствами базы данных и здесь не реализуется.
package docstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ipfs/go-cid"
	jsoniter "github.com/json-iterator/go"
	mh "github.com/multiformats/go-multihash"

	"directory/internal/models"
	"directory/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrNodeNotStarted - узел хранилища еще не запущен
var ErrNodeNotStarted = errors.New("docstore node is not started")

// EntryLog - журнал, поверх которого работает хранилище
type EntryLog interface {
	EnsureSchema(ctx context.Context) error
	Append(ctx context.Context, e *models.Entry) error
	ListByPrefix(ctx context.Context, prefix string) ([]*models.Entry, error)
}

// Handle - открытое хранилище документов
type Handle interface {
	// Get возвращает записи, _id которых начинается с prefix, в порядке вставки
	Get(ctx context.Context, prefix string) ([]*models.Entry, error)
	// Query возвращает записи, для которых predicate вернул true
	Query(ctx context.Context, predicate func(*models.Entry) bool) ([]*models.Entry, error)
	// Put добавляет запись и возвращает ее _id
	Put(ctx context.Context, e *models.Entry) (string, error)
}

// Node управляет жизненным циклом хранилища
type Node struct {
	name string
	log  EntryLog
	now  func() time.Time

	mu sync.RWMutex
	db *DB
}

// NewNode создает узел. name - имя базы (для логов и метрик).
func NewNode(name string, log EntryLog) *Node {
	return &Node{
		name: name,
		log:  log,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Start подготавливает журнал и открывает хранилище.
// Повторный вызов возвращает уже открытое хранилище.
func (n *Node) Start(ctx context.Context) (*DB, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.db != nil {
		return n.db, nil
	}

	if err := n.log.EnsureSchema(ctx); err != nil {
		utils.Error("failed to start docstore", utils.String("db", n.name), utils.Err(err))
		return nil, err
	}

	n.db = &DB{name: n.name, log: n.log, now: n.now}
	utils.Info("docstore is ready", utils.String("db", n.name))
	return n.db, nil
}

// GetNode возвращает открытое хранилище
func (n *Node) GetNode(ctx context.Context) (Handle, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.db == nil {
		return nil, ErrNodeNotStarted
	}
	return n.db, nil
}

// Stop закрывает хранилище. Журнал (соединение с БД) закрывает владелец.
func (n *Node) Stop() {
	n.mu.Lock()
	n.db = nil
	n.mu.Unlock()
}

// DB - открытое хранилище документов
type DB struct {
	name string
	log  EntryLog
	now  func() time.Time
}

// Name возвращает имя базы
func (d *DB) Name() string {
	return d.name
}

// Get возвращает записи по префиксу _id; пустой префикс - весь журнал
func (d *DB) Get(ctx context.Context, prefix string) ([]*models.Entry, error) {
	return d.log.ListByPrefix(ctx, prefix)
}

// Query применяет predicate ко всему журналу, порядок выдачи - порядок журнала
func (d *DB) Query(ctx context.Context, predicate func(*models.Entry) bool) ([]*models.Entry, error) {
	all, err := d.log.ListByPrefix(ctx, "")
	if err != nil {
		return nil, err
	}

	result := make([]*models.Entry, 0, len(all))
	for _, e := range all {
		if predicate(e) {
			result = append(result, e)
		}
	}
	return result, nil
}

// Put проставляет CreatedAt и _id и добавляет запись в журнал
func (d *DB) Put(ctx context.Context, e *models.Entry) (string, error) {
	if e.CreatedAt.IsZero() {
		// Postgres хранит микросекунды, иначе прочитанный документ не совпадет с _id
		e.CreatedAt = d.now().UTC().Truncate(time.Microsecond)
	}

	id, err := ComputeID(e)
	if err != nil {
		return "", err
	}
	e.ID = id

	if err := d.log.Append(ctx, e); err != nil {
		return "", err
	}
	return id, nil
}

// ComputeID вычисляет CID документа записи. Поле _id в расчете не участвует.
func ComputeID(e *models.Entry) (string, error) {
	doc := *e
	doc.ID = ""

	data, err := json.Marshal(&doc)
	if err != nil {
		return "", err
	}

	pref := cid.Prefix{
		Version:  1,
		Codec:    cid.Raw,
		MhType:   mh.SHA2_256,
		MhLength: -1,
	}
	c, err := pref.Sum(data)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

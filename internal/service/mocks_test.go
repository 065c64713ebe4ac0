package service

import (
	"context"
	"strings"
	"time"

	"directory/internal/models"
	"directory/internal/repository"
)

// ============ Mock BlacklistRepository ============

type MockBlacklistRepository struct {
	records   []*models.BlacklistRecord
	findCalls int
	createErr error
	findErr   error
	deleteErr error
	existsErr error
	countErr  error
	nextID    int
}

func NewMockBlacklistRepository(hashes ...string) *MockBlacklistRepository {
	m := &MockBlacklistRepository{nextID: 1}
	for _, h := range hashes {
		m.records = append(m.records, &models.BlacklistRecord{ID: m.nextID, Hash: h})
		m.nextID++
	}
	return m
}

func (m *MockBlacklistRepository) Create(ctx context.Context, record *models.BlacklistRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, r := range m.records {
		if r.Hash == record.Hash {
			return repository.ErrBlacklistRecordExists
		}
	}
	record.ID = m.nextID
	m.nextID++
	record.CreatedAt = time.Now()
	m.records = append(m.records, record)
	return nil
}

func (m *MockBlacklistRepository) Find(ctx context.Context) ([]*models.BlacklistRecord, error) {
	m.findCalls++
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.records, nil
}

func (m *MockBlacklistRepository) Exists(ctx context.Context, hash string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	for _, r := range m.records {
		if r.Hash == hash {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockBlacklistRepository) Delete(ctx context.Context, hash string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for i, r := range m.records {
		if r.Hash == hash {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return repository.ErrBlacklistRecordNotFound
}

func (m *MockBlacklistRepository) Count(ctx context.Context) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return len(m.records), nil
}

// ============ Mock SignatureOracle ============

type MockOracle struct {
	validSignature bool
	balance        float64
	merit          float64
	balanceErr     error
	meritErr       error

	verifyCalls  int
	balanceCalls int
	meritCalls   int
	lastAddress  string
}

func NewMockOracle() *MockOracle {
	return &MockOracle{validSignature: true, balance: 100, merit: 5}
}

func (m *MockOracle) VerifySignature(e *models.Entry) bool {
	m.verifyCalls++
	return m.validSignature
}

func (m *MockOracle) GetBalance(ctx context.Context, address string) (float64, error) {
	m.balanceCalls++
	m.lastAddress = address
	return m.balance, m.balanceErr
}

func (m *MockOracle) GetMerit(ctx context.Context, address string) (float64, error) {
	m.meritCalls++
	return m.merit, m.meritErr
}

// ============ Mock store ============

type MockStore struct {
	entries  []*models.Entry
	nodeErr  error
	getErr   error
	queryErr error
	putErr   error

	putCalls  int
	getPrefix string
}

func NewMockStore(entries ...*models.Entry) *MockStore {
	return &MockStore{entries: entries}
}

func (m *MockStore) GetNode(ctx context.Context) (StoreHandle, error) {
	if m.nodeErr != nil {
		return nil, m.nodeErr
	}
	return m, nil
}

func (m *MockStore) Get(ctx context.Context, prefix string) ([]*models.Entry, error) {
	m.getPrefix = prefix
	if m.getErr != nil {
		return nil, m.getErr
	}
	result := make([]*models.Entry, 0, len(m.entries))
	for _, e := range m.entries {
		if strings.HasPrefix(e.ID, prefix) {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *MockStore) Query(ctx context.Context, predicate func(*models.Entry) bool) ([]*models.Entry, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	result := make([]*models.Entry, 0)
	for _, e := range m.entries {
		if predicate(e) {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *MockStore) Put(ctx context.Context, e *models.Entry) (string, error) {
	m.putCalls++
	if m.putErr != nil {
		return "", m.putErr
	}
	e.ID = "bafkreitest" + string(rune('a'+len(m.entries)))
	m.entries = append(m.entries, e)
	return e.ID, nil
}

// ============ Mock notifier ============

type MockNotifier struct {
	entries []*models.Entry
}

func (m *MockNotifier) BroadcastEntry(e *models.Entry) {
	m.entries = append(m.entries, e)
}

// ============ Helpers ============

func validCandidate() models.EntryCandidate {
	return models.EntryCandidate{
		"entry":       "https://psfoundation.cash",
		"description": "Permissionless Software Foundation",
		"slpAddress":  "simpleledger:qqx7gq5kgzmd2wvxgqfhvmtpx0tn2n5rxqfd4x2y3m",
		"signature":   "H3kEfmoFIQKOBq2uQ5a5vOmPRwCnxz5AqYf5/Fi2ixGdJ",
		"category":    "tech",
	}
}

func entryWithID(id, category string) *models.Entry {
	return &models.Entry{ID: id, Entry: "https://" + id + ".example", Category: category}
}

func ids(entries []*models.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

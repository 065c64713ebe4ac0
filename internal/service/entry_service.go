package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"directory/internal/metrics"
	"directory/internal/models"
	"directory/pkg/utils"
)

// MinPSFBalance - минимальный баланс PSF токена для добавления записи
const MinPSFBalance = 10

// EntryService - прием и выдача записей каталога.
//
// Сервис не хранит состояния между вызовами: хранилище и черный список
// читаются заново при каждом запросе, повторов и кэша нет.
type EntryService struct {
	oracle    SignatureOracle
	store     StoreAccessor
	blacklist BlacklistStore
	notifier  EntryNotifier
	log       *utils.Logger
}

// NewEntryService создает новый экземпляр EntryService
func NewEntryService(oracle SignatureOracle, store StoreAccessor, blacklist BlacklistStore) *EntryService {
	return &EntryService{
		oracle:    oracle,
		store:     store,
		blacklist: blacklist,
		log:       utils.L().WithComponent("entries"),
	}
}

// SetNotifier подключает получателя уведомлений о новых записях
func (s *EntryService) SetNotifier(n EntryNotifier) {
	s.notifier = n
}

// CreateEntry проверяет заявку и добавляет запись в хранилище.
//
// Порядок: валидация, подпись, баланс (>= MinPSFBalance), merit, запись.
// Ошибки оракула и хранилища возвращаются без обертки.
func (s *EntryService) CreateEntry(ctx context.Context, candidate models.EntryCandidate) (*models.Entry, error) {
	entry, err := ValidateEntry(candidate)
	if err != nil {
		metrics.RecordAdmission(metrics.ResultInvalid)
		return nil, err
	}

	log := s.log.WithAddress(entry.SlpAddress)

	if !s.oracle.VerifySignature(entry) {
		metrics.RecordAdmission(metrics.ResultInvalidSignature)
		log.Info("entry rejected: invalid signature", utils.String("entry", entry.Entry))
		return nil, ErrInvalidSignature
	}

	balance, err := s.oracle.GetBalance(ctx, entry.SlpAddress)
	if err != nil {
		metrics.RecordAdmission(metrics.ResultOracleError)
		log.Error("failed to get balance", utils.Err(err))
		return nil, err
	}
	if balance < MinPSFBalance {
		metrics.RecordAdmission(metrics.ResultLowBalance)
		log.Info("entry rejected: insufficient balance", utils.Balance(balance))
		return nil, ErrInsufficientBalance
	}

	merit, err := s.oracle.GetMerit(ctx, entry.SlpAddress)
	if err != nil {
		metrics.RecordAdmission(metrics.ResultOracleError)
		log.Error("failed to get merit", utils.Err(err))
		return nil, err
	}

	record := &models.Entry{
		Entry:       strings.TrimSpace(entry.Entry),
		Description: strings.TrimSpace(entry.Description),
		SlpAddress:  strings.TrimSpace(entry.SlpAddress),
		Signature:   strings.TrimSpace(entry.Signature),
		Category:    strings.TrimSpace(entry.Category),
		Balance:     balance,
		Merit:       merit,
	}

	db, err := s.store.GetNode(ctx)
	if err != nil {
		metrics.RecordAdmission(metrics.ResultStoreError)
		log.Error("store is not available", utils.Err(err))
		return nil, err
	}

	id, err := db.Put(ctx, record)
	if err != nil {
		metrics.RecordAdmission(metrics.ResultStoreError)
		log.Error("failed to put entry", utils.Err(err))
		return nil, err
	}
	record.ID = id

	metrics.RecordAdmission(metrics.ResultAccepted)
	log.Info("entry added",
		utils.EntryID(id),
		utils.Category(record.Category),
		utils.Balance(balance),
		utils.Merit(merit),
	)

	if s.notifier != nil {
		s.notifier.BroadcastEntry(record)
	}

	return record, nil
}

// GetDbEntries возвращает все записи в порядке хранилища без черного списка
func (s *EntryService) GetDbEntries(ctx context.Context) ([]*models.Entry, error) {
	started := time.Now()

	db, err := s.store.GetNode(ctx)
	if err != nil {
		s.log.Error("store is not available", utils.Err(err))
		return nil, err
	}

	entries, err := db.Get(ctx, "")
	if err != nil {
		s.log.Error("failed to read entries", utils.Err(err))
		return nil, err
	}

	filtered, err := s.FilterEntries(ctx, entries)
	if err != nil {
		return nil, err
	}

	metrics.RecordRetrieval("all", started, len(entries)-len(filtered))
	return filtered, nil
}

// GetDbEntriesByCategory возвращает записи категории без черного списка
func (s *EntryService) GetDbEntriesByCategory(ctx context.Context, category string) ([]*models.Entry, error) {
	if category == "" {
		return nil, invalidArgument("category must be a string")
	}
	started := time.Now()

	db, err := s.store.GetNode(ctx)
	if err != nil {
		s.log.Error("store is not available", utils.Err(err))
		return nil, err
	}

	entries, err := db.Query(ctx, func(e *models.Entry) bool {
		return e.Category == category
	})
	if err != nil {
		s.log.Error("failed to query entries", utils.Category(category), utils.Err(err))
		return nil, err
	}

	filtered, err := s.FilterEntries(ctx, entries)
	if err != nil {
		return nil, err
	}

	metrics.RecordRetrieval("category", started, len(entries)-len(filtered))
	return filtered, nil
}

// FilterEntries удаляет записи, _id которых есть в черном списке. Порядок сохраняется.
//
// nil - ошибка аргумента; пустой срез возвращается сразу, без чтения черного списка.
func (s *EntryService) FilterEntries(ctx context.Context, entries []*models.Entry) ([]*models.Entry, error) {
	if entries == nil {
		return nil, invalidArgument("Input must be an array of entries")
	}
	if len(entries) == 0 {
		return entries, nil
	}

	records, err := s.blacklist.Find(ctx)
	if err != nil {
		s.log.Error("failed to read blacklist", utils.Err(err))
		return nil, err
	}
	if len(records) == 0 {
		return entries, nil
	}

	hidden := make(map[string]struct{}, len(records))
	for _, r := range records {
		hidden[r.Hash] = struct{}{}
	}

	result := make([]*models.Entry, 0, len(entries))
	for _, e := range entries {
		if _, ok := hidden[e.ID]; ok {
			continue
		}
		result = append(result, e)
	}

	if dropped := len(entries) - len(result); dropped > 0 {
		s.log.Debug("entries hidden by blacklist", utils.Count(dropped))
	}

	return result, nil
}

// IsInvalidArgument сообщает, является ли err ошибкой аргумента
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

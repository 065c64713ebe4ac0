package service

import (
	"context"
	"errors"
	"strings"

	"directory/internal/models"
	"directory/internal/repository"
	"directory/pkg/utils"
)

// Ошибки сервиса черного списка
var (
	ErrBlacklistHashExists   = errors.New("hash already in blacklist")
	ErrBlacklistHashNotFound = errors.New("hash not found in blacklist")
)

// BlacklistService - модерация: скрытие записей каталога по _id.
//
// Записи каталога не удаляются, черный список только исключает их из выдачи.
// Используется из directoryctl; HTTP API черный список не изменяет.
type BlacklistService struct {
	blacklistRepo BlacklistRepositoryInterface
}

// NewBlacklistService создает новый экземпляр BlacklistService.
func NewBlacklistService(blacklistRepo BlacklistRepositoryInterface) *BlacklistService {
	return &BlacklistService{
		blacklistRepo: blacklistRepo,
	}
}

// Add добавляет _id записи в черный список.
//
// Возвращает:
// - *models.BlacklistRecord: созданная запись
// - error: utils.ErrEmptyHash / utils.ErrInvalidHash при неверном hash,
//          ErrBlacklistHashExists если hash уже в списке
func (s *BlacklistService) Add(ctx context.Context, hash, reason string) (*models.BlacklistRecord, error) {
	hash = strings.TrimSpace(hash)
	if err := utils.ValidateHash(hash); err != nil {
		return nil, err
	}

	exists, err := s.blacklistRepo.Exists(ctx, hash)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrBlacklistHashExists
	}

	record := &models.BlacklistRecord{
		Hash:   hash,
		Reason: strings.TrimSpace(reason),
	}

	if err := s.blacklistRepo.Create(ctx, record); err != nil {
		// гонка между Exists и Create
		if errors.Is(err, repository.ErrBlacklistRecordExists) {
			return nil, ErrBlacklistHashExists
		}
		return nil, err
	}

	utils.Info("hash blacklisted", utils.Hash(hash), utils.String("reason", record.Reason))
	return record, nil
}

// List возвращает весь черный список в порядке добавления
func (s *BlacklistService) List(ctx context.Context) ([]*models.BlacklistRecord, error) {
	records, err := s.blacklistRepo.Find(ctx)
	if err != nil {
		return nil, err
	}

	if records == nil {
		records = []*models.BlacklistRecord{}
	}

	return records, nil
}

// Remove убирает hash из черного списка, запись снова попадает в выдачу
func (s *BlacklistService) Remove(ctx context.Context, hash string) error {
	hash = strings.TrimSpace(hash)
	if err := utils.ValidateHash(hash); err != nil {
		return err
	}

	err := s.blacklistRepo.Delete(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrBlacklistRecordNotFound) {
			return ErrBlacklistHashNotFound
		}
		return err
	}

	utils.Info("hash removed from blacklist", utils.Hash(hash))
	return nil
}

// IsBlacklisted проверяет, скрыта ли запись
func (s *BlacklistService) IsBlacklisted(ctx context.Context, hash string) (bool, error) {
	hash = strings.TrimSpace(hash)
	if err := utils.ValidateHash(hash); err != nil {
		return false, err
	}

	return s.blacklistRepo.Exists(ctx, hash)
}

// GetCount возвращает количество записей в черном списке.
func (s *BlacklistService) GetCount(ctx context.Context) (int, error) {
	return s.blacklistRepo.Count(ctx)
}

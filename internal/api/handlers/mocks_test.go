package handlers

import (
	"context"

	"directory/internal/models"
)

// ============ Mock DirectoryService ============

type MockDirectoryService struct {
	entries       []*models.Entry
	created       *models.Entry
	err           error
	lastCategory  string
	lastCandidate models.EntryCandidate
}

func NewMockDirectoryService(entries ...*models.Entry) *MockDirectoryService {
	return &MockDirectoryService{entries: entries}
}

func (m *MockDirectoryService) CreateEntry(ctx context.Context, candidate models.EntryCandidate) (*models.Entry, error) {
	m.lastCandidate = candidate
	if m.err != nil {
		return nil, m.err
	}
	return m.created, nil
}

func (m *MockDirectoryService) GetDbEntries(ctx context.Context) ([]*models.Entry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.entries, nil
}

func (m *MockDirectoryService) GetDbEntriesByCategory(ctx context.Context, category string) ([]*models.Entry, error) {
	m.lastCategory = category
	if m.err != nil {
		return nil, m.err
	}
	result := make([]*models.Entry, 0)
	for _, e := range m.entries {
		if e.Category == category {
			result = append(result, e)
		}
	}
	return result, nil
}

// statusError - ошибка с HTTP статусом, как у ответов оракула
type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string   { return e.message }
func (e *statusError) HTTPStatus() int { return e.status }

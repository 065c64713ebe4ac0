package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"directory/internal/models"
	"directory/pkg/utils"
)

// maxEntryBodySize - ограничение тела POST /directory
const maxEntryBodySize = 64 << 10

// DirectoryService - операции каталога, нужные HTTP слою
type DirectoryService interface {
	CreateEntry(ctx context.Context, candidate models.EntryCandidate) (*models.Entry, error)
	GetDbEntries(ctx context.Context) ([]*models.Entry, error)
	GetDbEntriesByCategory(ctx context.Context, category string) ([]*models.Entry, error)
}

// DirectoryHandler обрабатывает HTTP запросы каталога сайтов.
//
// Endpoints:
// - GET /directory - все записи без черного списка
// - GET /directory/category/{category} - записи категории
// - POST /directory - добавить запись (если запись через HTTP включена)
//
// Ошибки: статус из ошибки (ответ оракула) или 422, тело {"message": "..."}.
type DirectoryHandler struct {
	directoryService DirectoryService
}

// NewDirectoryHandler создает новый DirectoryHandler
func NewDirectoryHandler(directoryService DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directoryService: directoryService}
}

// GetEntries возвращает все записи каталога
//
// GET /directory
//
// Response 200 OK:
//
//	{"entries": [{"_id": "bafkrei...", "entry": "https://...", "category": "tech", ...}]}
func (h *DirectoryHandler) GetEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.directoryService.GetDbEntries(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, EntriesResponse{Entries: entries})
}

// GetEntriesByCategory возвращает записи одной категории
//
// GET /directory/category/{category}
func (h *DirectoryHandler) GetEntriesByCategory(w http.ResponseWriter, r *http.Request) {
	category := mux.Vars(r)["category"]

	entries, err := h.directoryService.GetDbEntriesByCategory(r.Context(), category)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, EntriesResponse{Entries: entries})
}

// CreateEntry добавляет запись в каталог
//
// POST /directory
//
// Request body - заявка:
//
//	{"entry": "https://...", "description": "...", "slpAddress": "simpleledger:...",
//	 "signature": "<base64>", "category": "tech"}
//
// Response 201 Created: {"entry": {...}}
func (h *DirectoryHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var candidate models.EntryCandidate

	r.Body = http.MaxBytesReader(w, r.Body, maxEntryBodySize)
	if err := json.NewDecoder(r.Body).Decode(&candidate); err != nil {
		utils.Debug("invalid entry body", utils.Err(err))
		respondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	entry, err := h.directoryService.CreateEntry(r.Context(), candidate)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, EntryResponse{Entry: entry})
}

package api

import (
	"net/http"

	"directory/internal/api/handlers"
	"directory/internal/api/middleware"
	"directory/internal/websocket"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies содержит все зависимости для API handlers
type Dependencies struct {
	DirectoryService handlers.DirectoryService
	Hub              *websocket.Hub

	// EnableWrites монтирует POST /directory за WriteAuth
	EnableWrites   bool
	WriteTokenHash string

	CORSOrigins []string
}

// SetupRoutes настраивает все HTTP маршруты приложения
//
// Структура маршрутов:
//
//	├── GET  /directory                     - все записи
//	├── GET  /directory/category/{category} - записи категории
//	├── POST /directory                     - добавить запись (EnableWrites, Bearer токен)
//	├── GET  /orbitdb, /orbitdb/c/{category} - старые пути, то же самое
//	├── GET  /ws/stream                     - WebSocket поток новых записей
//	├── GET  /metrics                       - Prometheus
//	└── GET  /health
//
// Middleware: Recovery, Logging, CORS для всех маршрутов.
func SetupRoutes(deps *Dependencies) *mux.Router {
	router := mux.NewRouter()

	var origins []string
	if deps != nil {
		origins = deps.CORSOrigins
	}

	router.Use(middleware.Recovery)
	router.Use(middleware.Logging)
	router.Use(middleware.CORS(origins))

	if deps != nil && deps.DirectoryService != nil {
		directoryHandler := handlers.NewDirectoryHandler(deps.DirectoryService)

		router.HandleFunc("/directory", directoryHandler.GetEntries).Methods("GET", "OPTIONS")
		router.HandleFunc("/directory/category/{category}", directoryHandler.GetEntriesByCategory).Methods("GET", "OPTIONS")

		router.HandleFunc("/orbitdb", directoryHandler.GetEntries).Methods("GET", "OPTIONS")
		router.HandleFunc("/orbitdb/c/{category}", directoryHandler.GetEntriesByCategory).Methods("GET", "OPTIONS")

		if deps.EnableWrites {
			create := middleware.WriteAuth(deps.WriteTokenHash)(http.HandlerFunc(directoryHandler.CreateEntry))
			router.Handle("/directory", create).Methods("POST")
		}
	}

	if deps != nil && deps.Hub != nil {
		router.HandleFunc("/ws/stream", deps.Hub.ServeWS)
	}

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	return router
}

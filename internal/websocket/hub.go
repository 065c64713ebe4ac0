package websocket

import (
	"bytes"
	"sync"
	"sync/atomic"

	jsoniter "github.com/json-iterator/go"

	"directory/internal/metrics"
	"directory/internal/models"
	"directory/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var jsonBufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 512))
	},
}

const broadcastBufferSize = 256

// Hub - поток новых записей каталога для websocket клиентов.
//
// Только сервер пишет в поток, входящие сообщения клиентов игнорируются.
// Медленные клиенты отключаются, при переполнении очереди broadcast
// сообщение отбрасывается: Broadcast никогда не блокирует прием записи.
//
// Использование:
//
//	hub := NewHub(checker)
//	go hub.Run()
//	defer hub.Stop()
type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	origins *OriginChecker
	dropped atomic.Int64
	log     *utils.Logger
}

// NewHub создает Hub. origins == nil - разрешены все Origin.
func NewHub(origins *OriginChecker) *Hub {
	if origins == nil {
		origins = NewOriginChecker(nil)
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, broadcastBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		origins:    origins,
		log:        utils.L().WithComponent("stream"),
	}
}

// Run - главный цикл Hub, запускать в отдельной горутине. Завершается после Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			metrics.StreamClients.Set(0)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			metrics.StreamClients.Set(float64(count))
			h.log.Debug("client connected", utils.Count(count))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			metrics.StreamClients.Set(float64(count))
			h.log.Debug("client disconnected", utils.Count(count))

		case message := <-h.broadcast:
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			var slow []*Client
			for _, client := range clients {
				select {
				case client.send <- message:
				default:
					slow = append(slow, client)
				}
			}

			if len(slow) > 0 {
				h.mu.Lock()
				for _, client := range slow {
					if _, ok := h.clients[client]; ok {
						delete(h.clients, client)
						close(client.send)
					}
				}
				count := len(h.clients)
				h.mu.Unlock()
				metrics.StreamClients.Set(float64(count))
				h.log.Warn("slow clients removed", utils.Int("removed", len(slow)), utils.Count(count))
			}
		}
	}
}

// Stop останавливает Run и закрывает все клиентские соединения
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}

// Broadcast сериализует message и ставит в очередь всем клиентам.
// Если очередь заполнена, сообщение отбрасывается.
func (h *Hub) Broadcast(message interface{}) {
	buf := jsonBufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer jsonBufferPool.Put(buf)

	if err := json.NewEncoder(buf).Encode(message); err != nil {
		h.log.Error("failed to marshal stream message", utils.Err(err))
		return
	}

	data := bytes.TrimRight(buf.Bytes(), "\n")
	msg := make([]byte, len(data))
	copy(msg, data)

	select {
	case h.broadcast <- msg:
	case <-h.done:
	default:
		h.dropped.Add(1)
		metrics.StreamDropped.Inc()
	}
}

// BroadcastEntry отправляет entryAdded
func (h *Hub) BroadcastEntry(e *models.Entry) {
	h.Broadcast(NewEntryAddedMessage(e))
}

// ClientCount возвращает количество подключенных клиентов
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// DroppedMessages - число сообщений, отброшенных из-за переполнения очереди
func (h *Hub) DroppedMessages() int64 {
	return h.dropped.Load()
}

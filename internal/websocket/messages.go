package websocket

import (
	"time"

	"directory/internal/models"
)

// MessageType определяет тип сообщения потока
type MessageType string

// MessageTypeEntryAdded - в каталог добавлена запись
const MessageTypeEntryAdded MessageType = "entryAdded"

// BaseMessage - общие поля сообщений потока
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
}

// EntryAddedMessage - уведомление о новой записи.
//
// Записи из черного списка тоже попадают в поток: черный список
// применяется только при выдаче через HTTP.
type EntryAddedMessage struct {
	BaseMessage
	Entry *models.Entry `json:"entry"`
}

// NewEntryAddedMessage создает сообщение entryAdded
func NewEntryAddedMessage(e *models.Entry) *EntryAddedMessage {
	return &EntryAddedMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeEntryAdded,
			Timestamp: time.Now().UTC(),
		},
		Entry: e,
	}
}

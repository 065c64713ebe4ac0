package models

import "time"

// BlacklistRecord представляет запись черного списка модерации
//
// Hash совпадает с _id записи каталога, такая запись исключается из всех выдач.
type BlacklistRecord struct {
	ID        int       `json:"id" db:"id"`
	Hash      string    `json:"hash" db:"hash"`
	Reason    string    `json:"reason,omitempty" db:"reason"` // заметка модератора
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

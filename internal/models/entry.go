package models

import "time"

// Entry представляет запись каталога сайтов
//
// balance и merit проставляются сервером в момент добавления и никогда
// не принимаются от клиента. После добавления запись не изменяется.
type Entry struct {
	ID          string    `json:"_id" db:"id"`                 // CID документа в хранилище
	Entry       string    `json:"entry" db:"entry"`            // адрес сайта
	Description string    `json:"description" db:"description"`
	SlpAddress  string    `json:"slpAddress" db:"slp_address"` // адрес владельца токенов
	Signature   string    `json:"signature" db:"signature"`    // подпись entry ключом slpAddress
	Category    string    `json:"category" db:"category"`
	Balance     float64   `json:"balance" db:"balance"` // баланс PSF на момент добавления
	Merit       float64   `json:"merit" db:"merit"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// EntryCandidate - нетипизированная заявка на добавление записи (как пришла в JSON)
type EntryCandidate map[string]interface{}

// Поля заявки в порядке валидации
const (
	FieldEntry       = "entry"
	FieldDescription = "description"
	FieldSlpAddress  = "slpAddress"
	FieldSignature   = "signature"
	FieldCategory    = "category"
)

// CandidateFields - порядок проверки полей заявки
var CandidateFields = []string{
	FieldEntry,
	FieldDescription,
	FieldSlpAddress,
	FieldSignature,
	FieldCategory,
}

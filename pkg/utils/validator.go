package utils

import (
	"errors"
	"strings"
	"unicode"
)

// validator.go - валидация входных данных
//
// Назначение:
// Проверка корректности значений, пришедших из нетипизированного JSON
// или из аргументов командной строки.

// Ошибки валидации
var (
	ErrEmptyHash   = errors.New("hash cannot be empty")
	ErrInvalidHash = errors.New("hash must not contain whitespace")
)

// NonEmptyString проверяет, что значение - непустая строка.
// Строка из одних пробелов считается непустой: обрезка выполняется позже.
func NonEmptyString(v interface{}) (string, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// ValidateHash проверяет идентификатор записи для черного списка
func ValidateHash(hash string) error {
	if hash == "" {
		return ErrEmptyHash
	}
	if strings.IndexFunc(hash, unicode.IsSpace) >= 0 {
		return ErrInvalidHash
	}
	return nil
}

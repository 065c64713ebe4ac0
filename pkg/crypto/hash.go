package crypto

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Ошибки проверки токена записи
var (
	ErrEmptyToken    = errors.New("token cannot be empty")
	ErrTokenMismatch = errors.New("token does not match hash")
	ErrInvalidHash   = errors.New("invalid token hash format")
	ErrTokenTooLong  = errors.New("token exceeds maximum length of 72 bytes")
)

// DefaultCost - стоимость bcrypt для хеша токена записи
const DefaultCost = 12

// MaxTokenLength - ограничение bcrypt (72 байта)
const MaxTokenLength = 72

// HashToken хеширует токен записи с DefaultCost.
// Результат кладется в WRITE_TOKEN_HASH, сам токен на сервере не хранится.
func HashToken(token string) (string, error) {
	return HashTokenWithCost(token, DefaultCost)
}

// HashTokenWithCost хеширует токен с указанной стоимостью,
// cost приводится к диапазону bcrypt.MinCost..bcrypt.MaxCost
func HashTokenWithCost(token string, cost int) (string, error) {
	if token == "" {
		return "", ErrEmptyToken
	}
	if len(token) > MaxTokenLength {
		return "", ErrTokenTooLong
	}

	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(token), cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// VerifyToken сверяет токен с хешем (constant-time внутри bcrypt)
func VerifyToken(token, hash string) error {
	if token == "" {
		return ErrEmptyToken
	}
	if hash == "" {
		return ErrInvalidHash
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(token))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrTokenMismatch
		}
		return ErrInvalidHash
	}

	return nil
}

// CheckToken - обертка над VerifyToken для условий
func CheckToken(token, hash string) bool {
	return VerifyToken(token, hash) == nil
}

// GetHashCost извлекает cost из хеша
func GetHashCost(hash string) (int, error) {
	if hash == "" {
		return 0, ErrInvalidHash
	}

	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return 0, ErrInvalidHash
	}

	return cost, nil
}

// ValidateHash проверяет что строка похожа на bcrypt хеш.
// Используется при загрузке конфигурации, чтобы не стартовать с битым WRITE_TOKEN_HASH.
func ValidateHash(hash string) error {
	_, err := GetHashCost(hash)
	return err
}

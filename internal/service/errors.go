package service

import (
	"errors"
	"fmt"
)

// Ошибки приема записи. Тексты возвращаются клиенту как есть.
var (
	ErrInvalidSignature    = errors.New("Invalid signature")        //nolint:stylecheck
	ErrInsufficientBalance = errors.New("Insufficient psf balance") //nolint:stylecheck
)

// ErrInvalidArgument - общий признак ошибок аргумента, для errors.Is
var ErrInvalidArgument = errors.New("invalid argument")

// ValidationError - поле заявки отсутствует, пустое или не строка
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Property '%s' must be a string!", e.Field)
}

// InvalidArgumentError - неверный аргумент конвейера выдачи
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return e.Message
}

// Is позволяет проверять errors.Is(err, ErrInvalidArgument)
func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func invalidArgument(msg string) error {
	return &InvalidArgumentError{Message: msg}
}

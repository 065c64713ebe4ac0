package service

import (
	"directory/internal/models"
	"directory/pkg/utils"
)

// ValidateEntry проверяет заявку и переносит поля в Entry без изменений.
//
// Поля проверяются в порядке models.CandidateFields, первая ошибка прерывает проверку.
// balance и merit из заявки игнорируются.
func ValidateEntry(candidate models.EntryCandidate) (*models.Entry, error) {
	values := make(map[string]string, len(models.CandidateFields))

	for _, field := range models.CandidateFields {
		s, ok := utils.NonEmptyString(candidate[field])
		if !ok {
			return nil, &ValidationError{Field: field}
		}
		values[field] = s
	}

	return &models.Entry{
		Entry:       values[models.FieldEntry],
		Description: values[models.FieldDescription],
		SlpAddress:  values[models.FieldSlpAddress],
		Signature:   values[models.FieldSignature],
		Category:    values[models.FieldCategory],
	}, nil
}

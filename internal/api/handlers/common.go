package handlers

import (
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"directory/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrorResponse стандартный формат ответа об ошибке
type ErrorResponse struct {
	Message string `json:"message"`
}

// EntriesResponse - ответ со списком записей
type EntriesResponse struct {
	Entries interface{} `json:"entries"`
}

// EntryResponse - ответ с одной записью
type EntryResponse struct {
	Entry interface{} `json:"entry"`
}

// httpStatusError - ошибка, знающая свой HTTP статус (ответы оракула)
type httpStatusError interface {
	HTTPStatus() int
}

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		utils.Error("failed to write response", utils.Err(err))
	}
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	respondWithJSON(w, status, ErrorResponse{Message: message})
}

// handleServiceError: статус из ошибки, если он есть, иначе 422
func handleServiceError(w http.ResponseWriter, err error) {
	status := http.StatusUnprocessableEntity

	var se httpStatusError
	if errors.As(err, &se) && se.HTTPStatus() >= 400 && se.HTTPStatus() < 600 {
		status = se.HTTPStatus()
	}

	respondWithError(w, status, err.Error())
}

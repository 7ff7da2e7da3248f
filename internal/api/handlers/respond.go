package handlers

import (
	"encoding/json"
	"net/http"
)

const (
	msgInternalError = "внутренняя ошибка сервера"
	msgUnauthorized  = "пользователь не авторизован"
)

// ErrorResponse стандартная модель ошибки API
type ErrorResponse struct {
	Message string `json:"message"`
}

// DecodeJSON декодирует JSON-тело запроса
func DecodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

// RespondJSON отправляет JSON-ответ с указанным статус-кодом
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// RespondError отправляет ошибку с указанным статус-кодом
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Message: message})
}

// RespondBadRequest отправляет 400 Bad Request
func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

// RespondNotFound отправляет 404 Not Found
func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

// RespondUnauthorized отправляет 401 Unauthorized
func RespondUnauthorized(w http.ResponseWriter) {
	RespondError(w, http.StatusUnauthorized, msgUnauthorized)
}

// RespondForbidden отправляет 403 Forbidden
func RespondForbidden(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusForbidden, message)
}

// RespondInternalError отправляет 500 Internal Server Error
func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, msgInternalError)
}

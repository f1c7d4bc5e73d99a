// Пакет errors — ответы с ошибками в едином формате FaultDesk.
// Формат: {"error": {"code": "...", "message": "..."}}.
// Все HTTP-ответы с ошибками должны использовать WriteError.
package errors //nolint:revive // конфликт имени со stdlib

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/bigkaa/faultdesk/internal/domain/model"
	"github.com/bigkaa/faultdesk/internal/domain/workflow"
	"github.com/bigkaa/faultdesk/internal/storage/filestore"
)

// Коды ошибок, определённые в OpenAPI контракте.
const (
	CodeValidationError   = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeForbidden         = "FORBIDDEN"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeFileTooLarge      = "FILE_TOO_LARGE"
	CodeInternalError     = "INTERNAL_ERROR"
)

// MsgReportNotFound — сообщение 404 для заявки.
const MsgReportNotFound = "Fault report not found"

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError записывает ответ ошибки в стандартном формате.
// statusCode — HTTP статус-код, code — машиночитаемый код, message — описание.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// --- Конструкторы для типичных ошибок ---

// ValidationError — 400 некорректные входные данные.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeValidationError, message)
}

// NotFound — 404 ресурс не найден.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

// Forbidden — 403 доступ к файлу запрещён.
func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, CodeForbidden, message)
}

// InvalidTransition — 409 недопустимый переход статуса.
func InvalidTransition(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, CodeInvalidTransition, message)
}

// FileTooLarge — 413 файл превышает лимит.
func FileTooLarge(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusRequestEntityTooLarge, CodeFileTooLarge, message)
}

// InternalError — 500 внутренняя ошибка.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeInternalError, message)
}

// FromDomain отображает ошибку сервисного слоя в HTTP-ответ.
// notFound — сообщение для model.ErrNotFound. Неизвестные ошибки
// логируются и отдаются клиенту как 500 без подробностей.
func FromDomain(w http.ResponseWriter, logger *slog.Logger, err error, notFound string) {
	var (
		ve *model.ValidationError
		te *workflow.TransitionError
	)
	switch {
	case stderrors.As(err, &ve):
		ValidationError(w, ve.Error())
	case stderrors.As(err, &te):
		InvalidTransition(w, te.Message)
	case stderrors.Is(err, model.ErrNotFound):
		NotFound(w, notFound)
	case stderrors.Is(err, model.ErrAccessDenied):
		Forbidden(w, "Access denied: file not associated with any report")
	case stderrors.Is(err, filestore.ErrInvalidHandle):
		ValidationError(w, "Invalid filename")
	case stderrors.Is(err, filestore.ErrTooLarge):
		FileTooLarge(w, "File too large")
	default:
		logger.Error("Внутренняя ошибка обработки запроса", slog.String("error", err.Error()))
		InternalError(w, "Internal server error")
	}
}

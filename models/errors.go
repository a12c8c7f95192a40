package models

import (
	"fmt"

	"github.com/pkg/errors"
)

type ErrorKind string

const (
	ErrorKindValidation       ErrorKind = "validation"
	ErrorKindAuth             ErrorKind = "auth"
	ErrorKindAuthorization    ErrorKind = "authorization"
	ErrorKindNotFound         ErrorKind = "not_found"
	ErrorKindAlreadyProcessed ErrorKind = "already_processed"
	ErrorKindImmutableState   ErrorKind = "immutable_state"
)

// AppError ошибка бизнес-логики, сообщение которой можно показать пользователю
type AppError struct {
	Kind    ErrorKind
	Message string
	// статус табеля, для already_processed/immutable_state
	Status TimesheetStatus
}

func (e *AppError) Error() string {
	return e.Message
}

func NewValidationError(message string) error {
	return &AppError{Kind: ErrorKindValidation, Message: message}
}

func NewValidationErrorf(format string, args ...interface{}) error {
	return &AppError{Kind: ErrorKindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewAuthError(message string) error {
	return &AppError{Kind: ErrorKindAuth, Message: message}
}

func NewAuthorizationError(message string) error {
	return &AppError{Kind: ErrorKindAuthorization, Message: message}
}

func NewNotFoundError(message string) error {
	return &AppError{Kind: ErrorKindNotFound, Message: message}
}

func NewAlreadyProcessedError(status TimesheetStatus) error {
	return &AppError{
		Kind:    ErrorKindAlreadyProcessed,
		Message: fmt.Sprintf("табель уже обработан, текущий статус: %v", status.ToHuman()),
		Status:  status,
	}
}

func NewImmutableStateError(status TimesheetStatus) error {
	return &AppError{
		Kind:    ErrorKindImmutableState,
		Message: fmt.Sprintf("табель в статусе \"%v\" изменить нельзя", status.ToHuman()),
		Status:  status,
	}
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsErrorKind(err error, kind ErrorKind) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Kind == kind
}

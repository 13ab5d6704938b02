package services

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorKind is the machine-readable failure category surfaced to the UI.
type ErrorKind string

const (
	KindUnauthenticated          ErrorKind = "Unauthenticated"
	KindUnauthorized             ErrorKind = "Unauthorized"
	KindNotFound                 ErrorKind = "NotFound"
	KindAlreadyInTeam            ErrorKind = "AlreadyInTeam"
	KindNotInTeam                ErrorKind = "NotInTeam"
	KindIsLeader                 ErrorKind = "IsLeader"
	KindDuplicateRequest         ErrorKind = "DuplicateRequest"
	KindRequestNotPending        ErrorKind = "RequestNotPending"
	KindTeamFull                 ErrorKind = "TeamFull"
	KindTeamTooSmall             ErrorKind = "TeamTooSmall"
	KindTeamTooLarge             ErrorKind = "TeamTooLarge"
	KindProblemStatementFull     ErrorKind = "ProblemStatementFull"
	KindProblemStatementInactive ErrorKind = "ProblemStatementInactive"
	KindAlreadyRegistered        ErrorKind = "AlreadyRegistered"
	KindInvalidInput             ErrorKind = "InvalidInput"
	KindTransientStoreConflict   ErrorKind = "TransientStoreConflict"
	KindInternal                 ErrorKind = "Internal"
)

// ServiceError is a recovered precondition failure. Services return it instead
// of raw store errors so handlers can render a stable {ok:false, kind, message}
// shape; AlreadyRegistered/AlreadyInTeam are informational rather than alarming.
type ServiceError struct {
	Kind    ErrorKind
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func Err(kind ErrorKind, message string) *ServiceError {
	return &ServiceError{Kind: kind, Message: message}
}

func Errf(kind ErrorKind, format string, args ...any) *ServiceError {
	return &ServiceError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf classifies any error; unrecognized errors are Internal.
func KindOf(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// MessageOf returns the user-facing message of a ServiceError, or the plain
// error text for anything else.
func MessageOf(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}

// HTTPStatus maps an error kind to the response status code.
func HTTPStatus(kind ErrorKind) int {
	switch kind {
	case KindUnauthenticated:
		return fiber.StatusUnauthorized
	case KindUnauthorized:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	case KindNotInTeam, KindIsLeader, KindDuplicateRequest,
		KindRequestNotPending, KindInvalidInput:
		return fiber.StatusBadRequest
	case KindTeamFull, KindTeamTooSmall, KindTeamTooLarge,
		KindProblemStatementFull, KindProblemStatementInactive:
		return fiber.StatusConflict
	case KindAlreadyRegistered, KindAlreadyInTeam:
		return fiber.StatusOK // idempotent soft-success, end-state already reached
	case KindTransientStoreConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

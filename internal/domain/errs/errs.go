// Package errs содержит таксономию ошибок шлюза PLC-тегов.
// Каждая ошибка несёт стабильный код, по которому транспортный слой
// выбирает HTTP-статус, а клиент может ветвиться без разбора текста.
package errs

import (
	"errors"
	"fmt"
)

// Code - стабильный код ошибки, возвращаемый клиенту в поле error_code
type Code string

const (
	CodeInvalidConfiguration Code = "INVALID_CONFIGURATION"
	CodeEndpointNotFound     Code = "ENDPOINT_NOT_FOUND"
	CodeDuplicateEndpoint    Code = "DUPLICATE_ENDPOINT"
	CodeProtectedEndpoint    Code = "PROTECTED_ENDPOINT"
	CodeArityMismatch        Code = "ARITY_MISMATCH"
	CodeEmptyConditionSet    Code = "EMPTY_CONDITION_SET"
	CodeUnsupportedTagType   Code = "UNSUPPORTED_TAG_TYPE"
	CodeDecodeError          Code = "DECODE_ERROR"
	CodeInvalidArgument      Code = "INVALID_ARGUMENT"
	CodeIOFailure            Code = "IO_FAILURE"
	CodePollActive           Code = "POLL_ACTIVE"
	CodeValueNotFound        Code = "VALUE_NOT_FOUND"
	CodeInternal             Code = "INTERNAL"
)

// Сентинелы для errors.Is: сравнение идёт по коду, а не по указателю
var (
	ErrInvalidConfiguration = &Error{Code: CodeInvalidConfiguration, Message: "invalid configuration"}
	ErrEndpointNotFound     = &Error{Code: CodeEndpointNotFound, Message: "endpoint not found"}
	ErrDuplicateEndpoint    = &Error{Code: CodeDuplicateEndpoint, Message: "endpoint already exists"}
	ErrProtectedEndpoint    = &Error{Code: CodeProtectedEndpoint, Message: "endpoint is protected"}
	ErrArityMismatch        = &Error{Code: CodeArityMismatch, Message: "input arrays differ in length"}
	ErrEmptyConditionSet    = &Error{Code: CodeEmptyConditionSet, Message: "conditions cannot be empty"}
	ErrUnsupportedTagType   = &Error{Code: CodeUnsupportedTagType, Message: "tag type not supported"}
	ErrDecode               = &Error{Code: CodeDecodeError, Message: "decode failed"}
	ErrInvalidArgument      = &Error{Code: CodeInvalidArgument, Message: "invalid argument"}
	ErrIOFailure            = &Error{Code: CodeIOFailure, Message: "tag access failed"}
	ErrPollActive           = &Error{Code: CodePollActive, Message: "polling already active"}
	ErrValueNotFound        = &Error{Code: CodeValueNotFound, Message: "no stored value"}
)

// Error - классифицированная ошибка с кодом и названием операции
type Error struct {
	Code    Code
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is сопоставляет ошибки по коду, поэтому errors.Is(err, ErrEndpointNotFound)
// срабатывает для любой ошибки с кодом ENDPOINT_NOT_FOUND
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New создаёт ошибку с кодом и форматированным сообщением
func New(code Code, op, format string, args ...any) *Error {
	return &Error{Code: code, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap оборачивает внешнюю ошибку кодом
func Wrap(code Code, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

// CodeOf извлекает код из цепочки ошибок; для неклассифицированных - INTERNAL
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Is - короткая форма проверки кода
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

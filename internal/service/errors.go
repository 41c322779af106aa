package service

import (
	"fmt"

	"taskboard/internal/validation"
)

type ErrorKind int

const (
	KindStorage ErrorKind = iota
	KindUnauthenticated
	KindValidation
	KindAuthorization
	KindNotFound
	KindConflict
	KindPartialFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindPartialFailure:
		return "partial_failure"
	default:
		return "storage"
	}
}

// Error is a classified operation failure.
type Error struct {
	Kind    ErrorKind
	Message string
	Fields  validation.FieldErrors
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

const msgUnauthenticated = "User not authenticated"

func unauthenticated() *Error {
	return &Error{Kind: KindUnauthenticated, Message: msgUnauthenticated}
}

func invalid(failure *validation.Failure) *Error {
	return &Error{Kind: KindValidation, Message: failure.Message, Fields: failure.Fields}
}

func invalidField(field, message string) *Error {
	fields := validation.FieldErrors{}
	fields.Add(field, message)
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func forbidden(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

func notFound(message string, err error) *Error {
	return &Error{Kind: KindNotFound, Message: message, Err: err}
}

func conflict(message string, err error) *Error {
	return &Error{Kind: KindConflict, Message: message, Err: err}
}

// storageFailure surfaces the underlying failure text when message is empty.
func storageFailure(message string, err error) *Error {
	if message == "" && err != nil {
		message = err.Error()
	}
	return &Error{Kind: KindStorage, Message: message, Err: err}
}

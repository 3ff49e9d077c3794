package services

import (
	"errors"
	"strings"

	"github.com/iamvtyagi/99acres/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error kinds. Handlers map them onto HTTP status codes with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// Error carries a client-facing message together with its kind.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func validationError(msg string) error   { return &Error{Kind: ErrValidation, Msg: msg} }
func unauthorizedError(msg string) error { return &Error{Kind: ErrUnauthorized, Msg: msg} }
func forbiddenError(msg string) error    { return &Error{Kind: ErrForbidden, Msg: msg} }
func notFoundError(msg string) error     { return &Error{Kind: ErrNotFound, Msg: msg} }
func conflictError(msg string) error     { return &Error{Kind: ErrConflict, Msg: msg} }

// notFoundOr turns a repository miss into a not-found error with msg and passes
// every other error through.
func notFoundOr(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFoundError(msg)
	}
	return err
}

// ParseID validates a client supplied object id. Placeholder strings leaked by
// clients ("undefined", "null") are rejected like any other malformed id.
func ParseID(raw, what string) (primitive.ObjectID, error) {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "", "undefined", "null":
		return primitive.NilObjectID, validationError("Invalid " + what + " ID")
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, validationError("Invalid " + what + " ID")
	}
	return id, nil
}

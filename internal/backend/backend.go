// internal/backend/backend.go

// Package backend defines the candidate-retrieval contract the
// reasoning core depends on. Concrete adapters live in subpackages;
// consumers depend only on Search, HealthCheck and Name.
package backend

import (
	"context"
	"errors"
	"fmt"

	"trademark-engine/internal/models"
)

// Candidate is one raw retrieval result: a record plus the backend's
// own relevance score. Retrieval scores are non-negative and may exceed
// 1; they are kept on the hit for diagnostics only.
type Candidate struct {
	Record models.TrademarkRecord `json:"record"`
	Score  float64                `json:"score"`
}

// Backend is an opaque candidate provider. Implementations must not
// rerank; scoring is the core's job.
type Backend interface {
	Search(ctx context.Context, q *models.SearchQuery) ([]Candidate, error)
	HealthCheck(ctx context.Context) error
	Name() string
}

// ErrorKind discriminates backend failures.
type ErrorKind string

const (
	KindUnreachable ErrorKind = "UNREACHABLE"
	KindTimeout     ErrorKind = "TIMEOUT"
	KindBadStatus   ErrorKind = "BAD_STATUS"
	KindParse       ErrorKind = "PARSE"
	KindUnavailable ErrorKind = "UNAVAILABLE"
)

// Error is a backend failure tagged with its kind. BadStatus carries
// the transport status code.
type Error struct {
	Kind       ErrorKind
	Backend    string
	StatusCode int
	cause      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("backend %s: %s", e.Backend, e.Kind)
	if e.Kind == KindBadStatus {
		msg = fmt.Sprintf("%s %d", msg, e.StatusCode)
	}
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.cause }

func NewUnreachable(backend string, cause error) *Error {
	return &Error{Kind: KindUnreachable, Backend: backend, cause: cause}
}

func NewTimeout(backend string, cause error) *Error {
	return &Error{Kind: KindTimeout, Backend: backend, cause: cause}
}

func NewBadStatus(backend string, statusCode int) *Error {
	return &Error{Kind: KindBadStatus, Backend: backend, StatusCode: statusCode}
}

func NewParse(backend string, cause error) *Error {
	return &Error{Kind: KindParse, Backend: backend, cause: cause}
}

func NewUnavailable(backend string, cause error) *Error {
	return &Error{Kind: KindUnavailable, Backend: backend, cause: cause}
}

// KindOf extracts the error kind from an error chain.
func KindOf(err error) (ErrorKind, bool) {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind, true
	}
	return "", false
}

// IsTimeout reports whether the error chain contains a backend timeout.
func IsTimeout(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindTimeout
}

// Package apperr defines the normalized failure shape shared by the gateway,
// the domain services and the stores.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	KindTimeout            Kind = "timeout"
	KindNetworkUnreachable Kind = "network_unreachable"
	KindHTTPStatus         Kind = "http_status"
	KindDomainConflict     Kind = "domain_conflict"
	KindValidation         Kind = "validation_failure"
	KindServer             Kind = "server_failure"
)

// ErrorTypeDoctorUnavailable is the backend error_type sent with a 409 when
// the doctor already has an appointment close to the requested time.
const ErrorTypeDoctorUnavailable = "doctor_unavailable"

// ErrNotAuthenticated is returned by actions that need a session when there is none.
var ErrNotAuthenticated = errors.New("not authenticated")

// Payload is the structured error body the backend sends with 4xx/5xx responses.
type Payload struct {
	Message      string `json:"message"`
	ErrorType    string `json:"error_type,omitempty"`
	ConflictTime string `json:"conflict_time,omitempty"`
}

// Error is the normalized failure. Message is always safe to show to staff.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	// ServerMessage is the message field of the backend payload, if any.
	ServerMessage string
	ErrorType     string
	ConflictTime  string
	// Payload holds the raw backend body, unmodified.
	Payload   json.RawMessage
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (%d)", e.Kind, e.StatusCode)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// As extracts an *Error from the chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}

// IsDoctorUnavailable reports whether err is the scheduling conflict raised
// when a doctor is already booked.
func IsDoctorUnavailable(err error) bool {
	e, ok := As(err)
	return ok && e.Kind == KindDomainConflict && e.ErrorType == ErrorTypeDoctorUnavailable
}

// ConflictTime returns the conflicting slot reported by the backend.
func ConflictTime(err error) (string, bool) {
	e, ok := As(err)
	if !ok || e.ConflictTime == "" {
		return "", false
	}
	return e.ConflictTime, true
}

// Message returns the display message for err, or fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if e, ok := As(err); ok && e.Message != "" {
		return e.Message
	}
	return fallback
}

// New builds an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an error of the given kind around a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

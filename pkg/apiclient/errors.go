package apiclient

import (
	"errors"
	"fmt"

	"github.com/cuong200111/baitap-sub001/pkg/models"
)

type ErrorKind string

const (
	KindTransport ErrorKind = "transport"
	KindHTTP      ErrorKind = "http"
	KindDecode    ErrorKind = "decode"
	KindRejected  ErrorKind = "rejected"
	KindStale     ErrorKind = "stale"
	KindStorage   ErrorKind = "storage"
)

// Error is every failure a storefront client call can end in. Message is
// safe to show to a shopper; Cause keeps the underlying detail.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
	Stock   *models.StockDetails
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) ErrorKind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

func transportError(err error) *Error {
	return &Error{Kind: KindTransport, Message: "Network error, please try again", Cause: err}
}

func httpError(status int, cause error) *Error {
	return &Error{Kind: KindHTTP, Status: status, Message: fmt.Sprintf("HTTP error! status: %d", status), Cause: cause}
}

func decodeError(err error) *Error {
	return &Error{Kind: KindDecode, Message: "Invalid response from server", Cause: err}
}

// StorageError wraps a local store failure.
func StorageError(message string, err error) *Error {
	return &Error{Kind: KindStorage, Message: message, Cause: err}
}

// Rejection is a business refusal reported with success:false.
func Rejection(message string, stock *models.StockDetails) *Error {
	if message == "" {
		message = "Request was rejected"
	}
	return &Error{Kind: KindRejected, Message: message, Stock: stock}
}

var errSuperseded = errors.New("a newer request for the same data was issued")

func staleError() *Error {
	return &Error{Kind: KindStale, Message: "Response discarded", Cause: errSuperseded}
}

package apiclient

import (
	"errors"

	"github.com/cuong200111/baitap-sub001/pkg/models"
)

// Result is what every client operation returns instead of an error: either
// Data (Err == nil) or a failure with a displayable Message and the
// underlying Err kept for logs and tests.
type Result[T any] struct {
	Data    T
	Message string
	Err     error
}

func Ok[T any](data T, message string) Result[T] {
	return Result[T]{Data: data, Message: message}
}

func Fail[T any](err error) Result[T] {
	r := Result[T]{Err: err}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		r.Message = apiErr.Message
	} else if err != nil {
		r.Message = err.Error()
	}
	return r
}

func (r Result[T]) Success() bool {
	return r.Err == nil
}

func (r Result[T]) Kind() ErrorKind {
	return KindOf(r.Err)
}

// Stock returns the stock details of a stock rejection, or nil.
func (r Result[T]) Stock() *models.StockDetails {
	var apiErr *Error
	if errors.As(r.Err, &apiErr) {
		return apiErr.Stock
	}
	return nil
}

func (r Result[T]) StockStatus() models.StockStatus {
	if s := r.Stock(); s != nil {
		return s.StockStatus
	}
	return ""
}

// Stale reports whether the response was discarded in favour of a newer one.
func (r Result[T]) Stale() bool {
	return r.Kind() == KindStale
}

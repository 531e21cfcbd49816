package price

import (
	"fmt"
	"strings"

	"github.com/juju/errors"
)

// FetchError is transport failure or non-success HTTP status. StatusCode=0 for transport.
type FetchError struct {
	URL        string
	StatusCode int
	Status     string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("price: fetch url=%s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("price: fetch url=%s status=%s", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SchemaError means payload is not JSON of expected shape.
type SchemaError struct {
	Fields []string
	Err    error
}

func (e *SchemaError) Error() string {
	if len(e.Fields) != 0 {
		return fmt.Sprintf("price: schema fields=%s: %v", strings.Join(e.Fields, ","), e.Err)
	}
	return fmt.Sprintf("price: schema: %v", e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// APIError is well formed payload with error flag set.
type APIError struct {
	Count int // series length in same payload
}

func (e *APIError) Error() string {
	return fmt.Sprintf("price: api response error=true series=%d", e.Count)
}

func IsFetchError(err error) bool {
	_, ok := errors.Cause(err).(*FetchError)
	return ok
}

func IsSchemaError(err error) bool {
	_, ok := errors.Cause(err).(*SchemaError)
	return ok
}

func IsAPIError(err error) bool {
	_, ok := errors.Cause(err).(*APIError)
	return ok
}

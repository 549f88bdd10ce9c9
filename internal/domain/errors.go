package domain

import "fmt"

// StoreAccessError reports a failed read against the entrypoint store:
// connection loss, query execution failure, or timeout. It is never
// retried by the repository layer.
type StoreAccessError struct {
	Op  string
	Err error
}

func (e *StoreAccessError) Error() string {
	return fmt.Sprintf("store access failed: %s: %v", e.Op, e.Err)
}

func (e *StoreAccessError) Unwrap() error {
	return e.Err
}

// MalformedDataError reports a stored document URI that does not parse as
// a syntactically valid URI. This indicates store corruption rather than
// caller error, so it is surfaced loudly instead of being skipped.
type MalformedDataError struct {
	Name   string
	RawURI string
	Err    error
}

func (e *MalformedDataError) Error() string {
	return fmt.Sprintf("malformed doc URI %q for entrypoint %q: %v", e.RawURI, e.Name, e.Err)
}

func (e *MalformedDataError) Unwrap() error {
	return e.Err
}

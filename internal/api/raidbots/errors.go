package raidbots

import (
	"errors"
	"fmt"
)

// ErrMalformedReport marks a data.csv that lacks the rows or fields a report needs.
var ErrMalformedReport = errors.New("malformed report")

// FetchError is returned for any failed report download: transport errors, non-200
// statuses and undecodable bodies.
type FetchError struct {
	Link       string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Link, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Link, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NumericParseError describes a value cell that is not a number.
type NumericParseError struct {
	Row   int
	Label string
	Value string
	Err   error
}

func (e *NumericParseError) Error() string {
	return fmt.Sprintf("row %d (%s): invalid value %q: %v", e.Row, e.Label, e.Value, e.Err)
}

func (e *NumericParseError) Unwrap() error {
	return e.Err
}

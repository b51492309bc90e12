package visits

import "errors"

// ErrNoRows means the filters matched nothing. Every catalogue operation
// surfaces it the same way (a 404 with a descriptive message), so the
// dashboard never has to guess between an error and an empty list.
var ErrNoRows = errors.New("no matching rows")

// BadRequestError marks contradictory or unsupported parameters, detected
// before any query runs.
type BadRequestError struct {
	Msg string
}

func (e *BadRequestError) Error() string {
	return e.Msg
}

func badRequest(msg string) error {
	return &BadRequestError{Msg: msg}
}

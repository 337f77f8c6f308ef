package domain

import "fmt"

// FetchError marks a source document as unreachable or its configured line
// range as empty. Fatal to the affected unit; there is no retry.
type FetchError struct {
	URL    string
	Reason string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Reason)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ResidualError marks a field that still contains non-numeric text after every
// documented normalization rule has been applied. It aborts the run: silent
// data loss is the one outcome the normalizers exist to prevent. The carried
// identity is what an operator needs to extend the correction tables.
type ResidualError struct {
	State    string
	ID       int
	Field    string
	Residual string
}

func (e *ResidualError) Error() string {
	return fmt.Sprintf("%s id %d: field %s holds unparseable residual %q", e.State, e.ID, e.Field, e.Residual)
}

// CoercionError marks a declared int/float field whose corrected text is not
// numeric. Same fatality and reporting as ResidualError.
type CoercionError struct {
	State string
	ID    int
	Field string
	Text  string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("%s id %d: cannot coerce field %s from %q", e.State, e.ID, e.Field, e.Text)
}

package resultfile

import (
	"errors"
	"fmt"

	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// ErrInvalidDocument indicates a document that does not satisfy the schema.
var ErrInvalidDocument = errors.New("invalid result-file document")

// DocumentError reports why a document was rejected.
type DocumentError struct {
	File    string
	Message string
	Pos     token.Pos
}

func (e *DocumentError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

func (e *DocumentError) Unwrap() error {
	return ErrInvalidDocument
}

// documentError converts a CUE error to a DocumentError carrying the
// position of its first problem.
func documentError(file string, err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &DocumentError{File: file, Message: err.Error()}
	}

	first := errs[0]
	docErr := &DocumentError{File: file, Message: cueerrors.String(first)}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		docErr.Pos = positions[0]
	}
	return docErr
}

func invalidf(file, format string, args ...any) error {
	return &DocumentError{File: file, Message: fmt.Sprintf(format, args...)}
}

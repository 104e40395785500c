package build

import "errors"

// Sentinel stage errors. A failed build's error chain contains exactly one.
var (
	ErrIdentifiers = errors.New("docmanual: identifier index error")
	ErrAssemble    = errors.New("docmanual: assemble error")
	ErrEmit        = errors.New("docmanual: emit error")
)

package docx

import "errors"

// Predefined errors returned by the merge pipeline. Callers should match
// them with errors.Is; every error returned by this package wraps exactly
// one of them or is an I/O error from encoding the result.
var (
	// ErrInsufficientInputs fewer than two documents were supplied
	ErrInsufficientInputs = errors.New("at least two documents are required")

	// ErrUnsupportedFormat an input is not a DOCX container
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrCorruptArchive the input bytes are not a valid ZIP archive
	ErrCorruptArchive = errors.New("corrupt archive")

	// ErrMissingDocumentPart the container has no word/document.xml part
	ErrMissingDocumentPart = errors.New("missing word/document.xml part")

	// ErrInvalidDocument the base document's body markers cannot be located
	ErrInvalidDocument = errors.New("invalid document structure")
)

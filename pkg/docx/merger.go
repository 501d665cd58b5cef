package docx

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Input is one document handed to the merge: a filename hint (may be
// empty) and the raw container bytes.
type Input struct {
	Name string
	Data []byte
}

// Merger combines DOCX documents into a single document. The first input
// is the base: its non-primary parts (styles, media, relationships,
// metadata) are carried into the result unmodified, and its trailing
// section-properties define the final page geometry. A Merger holds no
// state between calls; concurrent Merge calls are safe.
type Merger struct {
	logger *zap.Logger
}

// NewMerger creates a merger. A nil logger disables logging.
func NewMerger(logger *zap.Logger) *Merger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Merger{logger: logger}
}

// Merge validates the inputs and produces the merged container bytes. The
// bodies of all inputs appear in input order, separated by explicit page
// breaks; non-base fragments lose their trailing section-properties block.
// On any error no output is returned. Styles, numbering, and relationship
// IDs are not reconciled across documents, so an additional document
// referencing styles absent from the base may render incorrectly; that is
// a documented limit of the algorithm.
func (m *Merger) Merge(inputs []Input) ([]byte, error) {
	if len(inputs) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientInputs, len(inputs))
	}

	for _, input := range inputs {
		if err := checkFormat(input); err != nil {
			return nil, err
		}
	}

	base, err := DecodeContainer(inputs[0].Data)
	if err != nil {
		return nil, fmt.Errorf("base document %s: %w", inputName(inputs[0]), err)
	}

	baseDoc, ok := base.Part(DocumentPart)
	if !ok {
		return nil, fmt.Errorf("%w: base document %s", ErrMissingDocumentPart, inputName(inputs[0]))
	}

	baseXML := string(baseDoc)
	_, bodyEnd, ok := locateBody(baseXML)
	if !ok {
		return nil, fmt.Errorf("%w: body markers not found in base document %s", ErrInvalidDocument, inputName(inputs[0]))
	}

	fragments := make([]string, 0, len(inputs)-1)
	for _, input := range inputs[1:] {
		fragment, ok, err := m.extractBody(input)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		fragments = append(fragments, fragment)
	}

	base.SetPart(DocumentPart, []byte(spliceBodies(baseXML, bodyEnd, fragments)))

	return base.Encode()
}

// extractBody decodes a non-base input and returns its body fragment with
// any trailing section-properties stripped. A document whose body markers
// cannot be located contributes no body; only the base document's
// structure is load-bearing, because its prefix and suffix are reused
// verbatim.
func (m *Merger) extractBody(input Input) (string, bool, error) {
	container, err := DecodeContainer(input.Data)
	if err != nil {
		return "", false, fmt.Errorf("document %s: %w", inputName(input), err)
	}

	doc, ok := container.Part(DocumentPart)
	if !ok {
		return "", false, fmt.Errorf("%w: document %s", ErrMissingDocumentPart, inputName(input))
	}

	xml := string(doc)
	start, end, ok := locateBody(xml)
	if !ok {
		m.logger.Warn("body markers not found, skipping document body",
			zap.String("document", inputName(input)))
		return "", false, nil
	}

	return stripTrailingSectPr(xml[start:end]), true, nil
}

// checkFormat rejects inputs whose filename hint names a non-DOCX type.
// Content-level problems surface later as ErrCorruptArchive or
// ErrMissingDocumentPart; the extension check only catches callers handing
// over the wrong file kind.
func checkFormat(input Input) error {
	if input.Name == "" {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(input.Name))
	if ext != "" && ext != ".docx" {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, input.Name)
	}
	return nil
}

func inputName(input Input) string {
	if input.Name == "" {
		return "(unnamed)"
	}
	return input.Name
}

// Merge combines documents with a default merger and no logging.
func Merge(inputs []Input) ([]byte, error) {
	return NewMerger(nil).Merge(inputs)
}

package docx

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

const docxSectPr = `<w:sectPr><w:pgSz w:w="11906" w:h="16838"/></w:sectPr>`

// buildDocx assembles a minimal DOCX container whose body holds the given
// markup. extra parts are appended after the standard ones.
func buildDocx(t *testing.T, body string, extra [][2]string) []byte {
	t.Helper()

	documentXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body>` + body + `</w:body></w:document>`

	entries := [][2]string{
		{"[Content_Types].xml", "<Types/>"},
		{"_rels/.rels", "<Relationships/>"},
		{"word/document.xml", documentXML},
	}
	entries = append(entries, extra...)

	return buildArchive(t, entries)
}

func paragraph(text string) string {
	return "<w:p><w:r><w:t>" + text + "</w:t></w:r></w:p>"
}

func TestMergeValidation(t *testing.T) {
	valid := buildDocx(t, paragraph("only")+docxSectPr, nil)

	t.Run("NoInputs", func(t *testing.T) {
		_, err := Merge(nil)
		if !errors.Is(err, ErrInsufficientInputs) {
			t.Errorf("expected ErrInsufficientInputs, got %v", err)
		}
	})

	t.Run("SingleInput", func(t *testing.T) {
		_, err := Merge([]Input{{Name: "a.docx", Data: valid}})
		if !errors.Is(err, ErrInsufficientInputs) {
			t.Errorf("expected ErrInsufficientInputs, got %v", err)
		}
	})

	t.Run("WrongExtension", func(t *testing.T) {
		_, err := Merge([]Input{
			{Name: "a.docx", Data: valid},
			{Name: "b.pdf", Data: valid},
		})
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("expected ErrUnsupportedFormat, got %v", err)
		}
	})

	t.Run("CorruptInput", func(t *testing.T) {
		out, err := Merge([]Input{
			{Name: "a.docx", Data: valid},
			{Name: "b.docx", Data: []byte("garbage")},
		})
		if !errors.Is(err, ErrCorruptArchive) {
			t.Errorf("expected ErrCorruptArchive, got %v", err)
		}
		if out != nil {
			t.Error("expected no output on failure")
		}
	})

	t.Run("MissingDocumentPart", func(t *testing.T) {
		noDoc := buildArchive(t, [][2]string{{"[Content_Types].xml", "<Types/>"}})
		_, err := Merge([]Input{
			{Name: "a.docx", Data: noDoc},
			{Name: "b.docx", Data: valid},
		})
		if !errors.Is(err, ErrMissingDocumentPart) {
			t.Errorf("expected ErrMissingDocumentPart, got %v", err)
		}
	})

	t.Run("BaseWithoutBodyMarkers", func(t *testing.T) {
		broken := buildArchive(t, [][2]string{
			{"word/document.xml", "<w:document>no body here</w:document>"},
		})
		_, err := Merge([]Input{
			{Name: "a.docx", Data: broken},
			{Name: "b.docx", Data: valid},
		})
		if !errors.Is(err, ErrInvalidDocument) {
			t.Errorf("expected ErrInvalidDocument, got %v", err)
		}
	})
}

func TestMergeOrdering(t *testing.T) {
	a := buildDocx(t, paragraph("alpha")+docxSectPr, nil)
	b := buildDocx(t, paragraph("bravo")+docxSectPr, nil)
	c := buildDocx(t, paragraph("charlie"), nil)

	merged, err := Merge([]Input{
		{Name: "a.docx", Data: a},
		{Name: "b.docx", Data: b},
		{Name: "c.docx", Data: c},
	})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	container, err := DecodeContainer(merged)
	if err != nil {
		t.Fatalf("failed to decode merged output: %v", err)
	}

	doc, ok := container.Part(DocumentPart)
	if !ok {
		t.Fatal("merged output has no document part")
	}
	xml := string(doc)

	t.Run("BodiesInInputOrder", func(t *testing.T) {
		wantOrder := []string{"alpha", pageBreak, "bravo", pageBreak, "charlie", "</w:body>"}
		pos := 0
		for _, marker := range wantOrder {
			idx := strings.Index(xml[pos:], marker)
			if idx < 0 {
				t.Fatalf("expected %q after position %d", marker, pos)
			}
			pos += idx + len(marker)
		}
	})

	t.Run("OnePageBreakPerAddedDocument", func(t *testing.T) {
		if n := strings.Count(xml, pageBreak); n != 2 {
			t.Errorf("expected 2 page breaks, got %d", n)
		}
	})

	t.Run("OnlyBaseSectPrSurvives", func(t *testing.T) {
		if n := strings.Count(xml, "<w:sectPr"); n != 1 {
			t.Errorf("expected exactly the base sectPr, found %d", n)
		}
		// The base sectPr must sit at the tail of the body.
		if strings.Index(xml, "<w:sectPr") < strings.Index(xml, "charlie") {
			t.Error("expected base sectPr after the last merged body")
		}
	})
}

func TestMergeKeepsNonPrimaryParts(t *testing.T) {
	base := buildDocx(t, paragraph("base")+docxSectPr, [][2]string{
		{"word/styles.xml", "<w:styles>base styles</w:styles>"},
		{"word/media/image1.png", "\x89PNG base image"},
	})
	other := buildDocx(t, paragraph("other"), [][2]string{
		{"word/styles.xml", "<w:styles>other styles</w:styles>"},
	})

	merged, err := Merge([]Input{
		{Name: "base.docx", Data: base},
		{Name: "other.docx", Data: other},
	})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	baseContainer, err := DecodeContainer(base)
	if err != nil {
		t.Fatalf("failed to decode base: %v", err)
	}
	mergedContainer, err := DecodeContainer(merged)
	if err != nil {
		t.Fatalf("failed to decode merged output: %v", err)
	}

	if mergedContainer.Len() != baseContainer.Len() {
		t.Fatalf("expected %d parts, got %d", baseContainer.Len(), mergedContainer.Len())
	}

	for _, name := range baseContainer.Names() {
		if name == DocumentPart {
			continue
		}
		want, _ := baseContainer.Part(name)
		got, ok := mergedContainer.Part(name)
		if !ok {
			t.Errorf("part %s missing from merged output", name)
			continue
		}
		if !bytes.Equal(want, got) {
			t.Errorf("part %s differs from base", name)
		}
	}
}

func TestMergeDuplicates(t *testing.T) {
	a := buildDocx(t, paragraph("repeated content")+docxSectPr, nil)

	merged, err := Merge([]Input{
		{Name: "a.docx", Data: a},
		{Name: "a.docx", Data: a},
	})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	container, err := DecodeContainer(merged)
	if err != nil {
		t.Fatalf("failed to decode merged output: %v", err)
	}
	doc, _ := container.Part(DocumentPart)

	if n := strings.Count(string(doc), "repeated content"); n != 2 {
		t.Errorf("expected both copies of the body, found %d", n)
	}
}

func TestMergeSkipsUnlocatableBody(t *testing.T) {
	base := buildDocx(t, paragraph("base")+docxSectPr, nil)
	noBody := buildArchive(t, [][2]string{
		{"word/document.xml", "<w:document>not wrapped in a body</w:document>"},
	})
	tail := buildDocx(t, paragraph("tail"), nil)

	merged, err := Merge([]Input{
		{Name: "base.docx", Data: base},
		{Name: "nobody.docx", Data: noBody},
		{Name: "tail.docx", Data: tail},
	})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	container, err := DecodeContainer(merged)
	if err != nil {
		t.Fatalf("failed to decode merged output: %v", err)
	}
	doc, _ := container.Part(DocumentPart)
	xml := string(doc)

	if strings.Contains(xml, "not wrapped in a body") {
		t.Error("expected unlocatable body to be skipped")
	}
	if !strings.Contains(xml, "tail") {
		t.Error("expected later document to still be merged")
	}
	if n := strings.Count(xml, pageBreak); n != 1 {
		t.Errorf("expected 1 page break for the surviving fragment, got %d", n)
	}
}

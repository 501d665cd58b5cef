package docx

import "strings"

// Body boundary and section markers of the primary XML part. Boundary
// detection is literal substring search over the raw markup, not an XML
// parse; the markers are assumed to appear exactly once and never inside
// CDATA or comments.
const (
	bodyOpenTag  = "<w:body>"
	bodyCloseTag = "</w:body>"

	sectPrOpenTag  = "<w:sectPr"
	sectPrCloseTag = "</w:sectPr>"

	// pageBreak is a minimal paragraph holding a single page-break run,
	// inserted between the bodies of merged documents.
	pageBreak = `<w:p><w:r><w:br w:type="page"/></w:r></w:p>`
)

// locateBody finds the body region of a document.xml text. start is the
// position immediately after the opening body tag, end is the position of
// the opening of the closing body tag. ok is false when either marker is
// missing.
func locateBody(xml string) (start, end int, ok bool) {
	open := strings.Index(xml, bodyOpenTag)
	if open < 0 {
		return 0, 0, false
	}
	start = open + len(bodyOpenTag)

	end = strings.LastIndex(xml, bodyCloseTag)
	if end < start {
		return 0, 0, false
	}

	return start, end, true
}

// stripTrailingSectPr removes a trailing section-properties block from a
// body fragment. An embedded sectPr forces a new section in the merged
// output, so non-base fragments must shed theirs; the base document's own
// trailing sectPr governs the page geometry of the whole merged document.
// Fragments without a trailing block are returned unchanged.
func stripTrailingSectPr(fragment string) string {
	trimmed := strings.TrimRight(fragment, " \t\r\n")
	if !strings.HasSuffix(trimmed, sectPrCloseTag) {
		return fragment
	}

	open := strings.LastIndex(trimmed, sectPrOpenTag)
	if open < 0 {
		return fragment
	}

	return trimmed[:open]
}

// spliceBodies builds the merged document.xml text: everything of the base
// document up to its closing body tag, then one page break followed by each
// additional fragment in input order, then the base document's tail
// (closing body tag, trailing sectPr and wrapper included). No fragment is
// reordered, deduplicated, or merged with its neighbors.
func spliceBodies(baseXML string, bodyEnd int, fragments []string) string {
	size := len(baseXML)
	for _, fragment := range fragments {
		size += len(pageBreak) + len(fragment)
	}

	var b strings.Builder
	b.Grow(size)

	b.WriteString(baseXML[:bodyEnd])
	for _, fragment := range fragments {
		b.WriteString(pageBreak)
		b.WriteString(fragment)
	}
	b.WriteString(baseXML[bodyEnd:])

	return b.String()
}

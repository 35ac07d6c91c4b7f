package selector

import "sort"

// Source wraps a document's text and converts between byte offsets and
// line/column positions. Lines and columns are 1-based; columns count
// bytes, matching how editors address positions in UTF-8 buffers.
type Source struct {
	text        string
	lineOffsets []int
}

func NewSource(text string) *Source {
	offsets := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return &Source{text: text, lineOffsets: offsets}
}

func (s *Source) Text() string { return s.text }

func (s *Source) Len() int { return len(s.text) }

// Position returns the 1-based line and column for a byte offset. Offsets
// past the end map to the final position.
func (s *Source) Position(offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(s.text) {
		offset = len(s.text)
	}
	idx := sort.Search(len(s.lineOffsets), func(i int) bool {
		return s.lineOffsets[i] > offset
	}) - 1
	return idx + 1, offset - s.lineOffsets[idx] + 1
}

// Offset returns the byte offset of a 1-based line and column.
func (s *Source) Offset(line, col int) int {
	if line < 1 {
		line = 1
	}
	if line > len(s.lineOffsets) {
		return len(s.text)
	}
	off := s.lineOffsets[line-1] + col - 1
	if off > len(s.text) {
		off = len(s.text)
	}
	if off < 0 {
		off = 0
	}
	return off
}

package asm

import (
	"io"
	"strings"
)

// Section is an append-only text region of the output. A section with a
// name starts with a "section .<name>" directive.
type Section struct {
	sb    strings.Builder
	lines int
}

func NewSection(name string) *Section {
	s := &Section{}
	if name != "" {
		s.sb.WriteString("section ." + name + "\n")
	}
	return s
}

func (s *Section) Emit(lines ...Line) {
	for _, line := range lines {
		s.Text(FormatLine(line))
	}
}

// Text appends a pre-formatted line.
func (s *Section) Text(text string) {
	s.sb.WriteString(text)
	s.sb.WriteString("\n")
	s.lines++
}

// Lines is the number of lines appended after the section directive.
func (s *Section) Lines() int {
	return s.lines
}

func (s *Section) String() string {
	return s.sb.String()
}

func (s *Section) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.sb.String())
	return int64(n), err
}

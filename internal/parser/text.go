package parser

import (
	"bufio"
	"io"
	"strings"
)

// TextParser handles plain text files, normalizing blank-line runs into
// single paragraph breaks.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Source, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &Source{
		Name:       filename,
		TotalPages: 1,
		Text:       strings.Join(paragraphs, "\n\n"),
	}, nil
}

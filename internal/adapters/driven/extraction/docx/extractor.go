// Package docx extracts text from DOCX uploads by parsing the OOXML
// document body inside the ZIP container.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/docforge/docforge/internal/core/domain"
	"github.com/docforge/docforge/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles DOCX files.
type Extractor struct{}

// New creates a DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".docx"}
}

// Extract opens the ZIP container and pulls paragraph text from
// word/document.xml. Paragraphs become lines; explicit page breaks become
// form feeds so the cleaner can segment pages.
func (e *Extractor) Extract(_ context.Context, data []byte, filename string) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %s is not a DOCX container: %v", domain.ErrExtraction, filename, err)
	}

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", domain.ErrExtraction, filename, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", domain.ErrExtraction, filename, err)
		}
		return parseBody(content, filename)
	}
	return "", fmt.Errorf("%w: %s has no document body", domain.ErrExtraction, filename)
}

// documentXML mirrors the parts of word/document.xml we read.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text   []textElement `xml:"t"`
	Breaks []breakEl     `xml:"br"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

type breakEl struct {
	Type string `xml:"type,attr"`
}

func parseBody(content []byte, filename string) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("%w: %s: malformed document body: %v", domain.ErrExtraction, filename, err)
	}

	var b strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			b.WriteString("\n")
		}
		for _, r := range para.Runs {
			for _, br := range r.Breaks {
				if br.Type == "page" {
					b.WriteString("\f")
				}
			}
			for _, t := range r.Text {
				b.WriteString(t.Content)
			}
		}
	}
	return b.String(), nil
}

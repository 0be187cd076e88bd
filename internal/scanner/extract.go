package scanner

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// docxBodyPart is the archive entry holding the document body.
const docxBodyPart = "word/document.xml"

// wordprocessingNamespace is used when the body's root element carries no
// namespace of its own.
const wordprocessingNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// ErrMissingBody is returned when a docx archive has no document body part.
var ErrMissingBody = errors.New("docx archive has no " + docxBodyPart)

// ExtractFile reads the file at path and returns its plain text.
func ExtractFile(path string, format Format) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return Extract(data, format)
}

// Extract returns the plain text of a file's raw bytes.
func Extract(data []byte, format Format) (string, error) {
	if format == FormatDocx {
		return ExtractDocx(data)
	}
	return DecodeText(data)
}

// DecodeText decodes plain text. A UTF-8 or UTF-16 byte order mark selects
// the encoding; otherwise UTF-8 is assumed and invalid sequences become
// U+FFFD instead of failing.
func DecodeText(data []byte) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	return string(out), nil
}

// ExtractDocx unpacks a word-processor archive and returns the text of every
// non-empty paragraph, one per line, in document order.
func ExtractDocx(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}

	for _, file := range reader.File {
		if file.Name != docxBodyPart {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", docxBodyPart, err)
		}
		defer rc.Close()

		return paragraphText(rc)
	}
	return "", ErrMissingBody
}

// paragraphText streams the body XML. The namespace is taken from the root
// element so documents written by non-Word producers still match.
func paragraphText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		ns         string
		rootSeen   bool
		paraDepth  int
		textDepth  int
		current    strings.Builder
		paragraphs []string
	)

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", docxBodyPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !rootSeen {
				rootSeen = true
				ns = t.Name.Space
				if ns == "" {
					ns = wordprocessingNamespace
				}
			}
			if t.Name.Space != ns {
				continue
			}
			switch t.Name.Local {
			case "p":
				if paraDepth == 0 {
					current.Reset()
				}
				paraDepth++
			case "t":
				textDepth++
			}

		case xml.EndElement:
			if t.Name.Space != ns {
				continue
			}
			switch t.Name.Local {
			case "p":
				if paraDepth == 0 {
					continue
				}
				paraDepth--
				if paraDepth == 0 {
					if p := strings.TrimSpace(current.String()); p != "" {
						paragraphs = append(paragraphs, p)
					}
				}
			case "t":
				if textDepth > 0 {
					textDepth--
				}
			}

		case xml.CharData:
			if paraDepth > 0 && textDepth > 0 {
				current.Write(t)
			}
		}
	}

	if !rootSeen {
		return "", fmt.Errorf("parse %s: empty document", docxBodyPart)
	}
	return strings.Join(paragraphs, "\n"), nil
}

// Package extract turns uploaded files into the plain text stored on a
// Document.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"unicode/utf8"

	readability "github.com/go-shiori/go-readability"

	"github.com/mrlokans/wordhoard/internal/entities"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file type")
	ErrEmptyDocument     = errors.New("document contains no text")
)

// FormatFromFilename maps a file extension to a document format.
func FormatFromFilename(filename string) (entities.DocumentFormat, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return entities.DocumentFormatText, nil
	case ".docx":
		return entities.DocumentFormatDocx, nil
	case ".html", ".htm":
		return entities.DocumentFormatHTML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// Text reads r according to format and returns its plain text.
func Text(format entities.DocumentFormat, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	var text string
	switch format {
	case entities.DocumentFormatText:
		text = plainText(data)
	case entities.DocumentFormatDocx:
		text, err = docxText(data)
	case entities.DocumentFormatHTML:
		text, err = htmlText(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}

// plainText decodes UTF-8, dropping a byte order mark and replacing
// invalid sequences.
func plainText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "�")
}

func htmlText(data []byte) (string, error) {
	pageURL, _ := url.Parse("http://localhost/upload")
	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract html text: %w", err)
	}
	return strings.TrimSpace(article.TextContent), nil
}

// docxText concatenates the paragraphs of word/document.xml, one per line.
func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx: %w", err)
	}

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open docx body: %w", err)
		}
		defer rc.Close()
		return paragraphs(rc)
	}
	return "", fmt.Errorf("failed to open docx: word/document.xml missing")
}

func paragraphs(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var out []string
	var current strings.Builder
	inText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse docx body: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				inText = true
			case "tab":
				current.WriteByte('\t')
			case "br", "cr":
				current.WriteByte('\n')
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				out = append(out, current.String())
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(el)
			}
		}
	}
	if current.Len() > 0 {
		out = append(out, current.String())
	}
	return strings.Join(out, "\n"), nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

package ingest

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	cderr "github.com/cleardesk-hq/cleardesk/pkg/errors"
)

// Parser extracts text from raw document bytes.
type Parser interface {
	Parse(content []byte, filename string) (string, error)
}

// TextParser handles plain text files (.txt and .md). Content is
// decoded as UTF-8 with a Latin-1 fallback for legacy exports.
type TextParser struct{}

func (TextParser) Parse(content []byte, _ string) (string, error) {
	if utf8.Valid(content) {
		return string(content), nil
	}

	// Latin-1 maps every byte to the code point of the same value.
	runes := make([]rune, len(content))
	for i, b := range content {
		runes[i] = rune(b)
	}
	return string(runes), nil
}

var parsers = map[string]Parser{
	".txt": TextParser{},
	".md":  TextParser{},
}

// SupportedExtensions lists the file extensions ParserFor accepts.
func SupportedExtensions() []string {
	return []string{".md", ".txt"}
}

// ParserFor selects a parser by file extension.
func ParserFor(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	parser, ok := parsers[ext]
	if !ok {
		return nil, cderr.New(cderr.CodeIngestFileTypeUnsupported,
			"unsupported file type "+ext+" (supported: .md, .txt)",
			cderr.Field("filename", filename),
		)
	}
	return parser, nil
}

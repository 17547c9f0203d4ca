// Package textfile reads and writes tables in the delimited text format:
// one line per row, every cell terminated by the delimiter. Files are
// accessed through an afero filesystem and decoded with a configurable
// character map.
package textfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/mesh-intelligence/etable/internal/strutil"
	"github.com/mesh-intelligence/etable/pkg/table"
)

// Supported encodings.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1251 = "windows-1251"
	EncodingWindows1252 = "windows-1252"
	EncodingISO88591    = "iso-8859-1"
)

// Option errors.
var (
	ErrUnknownEncoding  = errors.New("unknown encoding")
	ErrInvalidDelimiter = errors.New("invalid delimiter")
)

var encodings = map[string]encoding.Encoding{
	EncodingUTF8:        encoding.Nop,
	EncodingWindows1251: charmap.Windows1251,
	EncodingWindows1252: charmap.Windows1252,
	EncodingISO88591:    charmap.ISO8859_1,
}

// Options control how files are parsed and written.
type Options struct {
	Delimiter      rune
	Encoding       string
	DefaultRows    int // table size for an empty file
	DefaultColumns int
}

// DefaultOptions returns comma-delimited UTF-8 with a 10x10 empty table.
func DefaultOptions() Options {
	return Options{
		Delimiter:      table.DefaultDelimiter,
		Encoding:       EncodingUTF8,
		DefaultRows:    10,
		DefaultColumns: 10,
	}
}

// Validate checks the encoding and the default dimensions.
func (o Options) Validate() error {
	if _, ok := encodings[strings.ToLower(o.Encoding)]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEncoding, o.Encoding)
	}
	if o.DefaultRows < 1 || o.DefaultColumns < 1 {
		return table.ErrInvalidDimensions
	}
	if !validDelimiter(o.Delimiter) {
		return fmt.Errorf("%w %q", ErrInvalidDelimiter, o.Delimiter)
	}
	return nil
}

// validDelimiter rejects line breaks, the quote, and every character that can
// appear inside a number, a reference or a formula.
func validDelimiter(r rune) bool {
	switch r {
	case 0, '\n', '\r', '"', '.', '=', 'R', 'C':
		return false
	}
	if r < 0x80 && (strutil.IsDigit(byte(r)) || strutil.IsMathOperator(byte(r))) {
		return false
	}
	return true
}

func (o Options) encoding() encoding.Encoding {
	if enc, ok := encodings[strings.ToLower(o.Encoding)]; ok {
		return enc
	}
	return encoding.Nop
}

// Ensure creates an empty file at path when it does not exist and reports
// whether it did.
func Ensure(fs afero.Fs, path string) (bool, error) {
	_, err := fs.Stat(path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	if err := afero.WriteFile(fs, path, nil, 0o644); err != nil {
		return false, fmt.Errorf("create %s: %w", path, err)
	}
	return true, nil
}

// Read loads the table stored at path. The table has one row per line and as
// many columns as the longest line has fields. A file with no lines yields an
// empty DefaultRows x DefaultColumns table. Cells that fail to classify are
// stored as error cells and reported in the returned diagnostics.
func Read(fs afero.Fs, path string, opts Options) (*table.Table, []*table.CellError, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	data, err = opts.encoding().NewDecoder().Bytes(data)
	if err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return Parse(data, opts)
}

// Parse builds a table from already decoded delimited text.
func Parse(data []byte, opts Options) (*table.Table, []*table.CellError, error) {
	lines, err := splitLines(data)
	if err != nil {
		return nil, nil, err
	}

	if len(lines) == 0 {
		t, err := table.New(opts.DefaultRows, opts.DefaultColumns)
		return t, nil, err
	}

	rows := make([][]string, len(lines))
	columns := 1
	for i, line := range lines {
		rows[i] = splitFields(line, opts.Delimiter)
		if len(rows[i]) > columns {
			columns = len(rows[i])
		}
	}

	t, err := table.New(len(rows), columns)
	if err != nil {
		return nil, nil, err
	}

	var diags []*table.CellError
	for r, fields := range rows {
		for c, field := range fields {
			if field == "" {
				continue
			}
			var cellErr *table.CellError
			if err := t.EditCell(r+1, c+1, field); errors.As(err, &cellErr) {
				diags = append(diags, cellErr)
			}
		}
	}
	return t, diags, nil
}

// Write serializes t to path, replacing any existing content.
func Write(fs afero.Fs, path string, t *table.Table, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	out, _, err := transform.String(opts.encoding().NewEncoder(), t.Serialize(opts.Delimiter))
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := afero.WriteFile(fs, path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func splitLines(data []byte) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan lines: %w", err)
	}
	return lines, nil
}

// splitFields returns the delimiter-terminated fields of line. A non-empty
// remainder after the last delimiter counts as one more field. A field that
// starts with a double quote runs until a quote directly followed by the
// delimiter or the end of the line, so delimiters and stray quotes inside
// quoted text do not split it.
func splitFields(line string, delim rune) []string {
	runes := []rune(line)
	closesText := func(i int) bool {
		return i+1 == len(runes) || runes[i+1] == delim
	}

	var fields []string
	start := 0
	quoted := false
	for i, r := range runes {
		switch {
		case quoted:
			if r == '"' && closesText(i) {
				quoted = false
			}
		case r == '"' && strings.TrimSpace(string(runes[start:i])) == "" && !closesText(i):
			quoted = true
		case r == delim:
			fields = append(fields, string(runes[start:i]))
			start = i + 1
		}
	}
	if quoted {
		// Unterminated text: split the remainder on every delimiter.
		for i := start; i < len(runes); i++ {
			if runes[i] == delim {
				fields = append(fields, string(runes[start:i]))
				start = i + 1
			}
		}
	}
	if rest := string(runes[start:]); strings.TrimSpace(rest) != "" {
		fields = append(fields, rest)
	}
	return fields
}

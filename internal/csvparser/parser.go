// =============================================================================
// Portfolio Consolidation - CSV Parser
// =============================================================================
//
// Some extracts reach us as CSV exports instead of workbooks. This module
// reads them into the same raw [][]string grid the workbook reader produces,
// so the loader does not care which format a document came in.
//
// Legacy exports are usually ISO-8859-1 or Windows-1252. The configured
// encoding is decoded to UTF-8 on the way in and, for csv reports, encoded
// back on the way out.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/portfolio-consolidation/internal/config"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// =============================================================================
// READING
// =============================================================================

// ReadFile reads every record of a CSV file.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: Delimiter and encoding.
//
// RETURNS:
//   - The records, one []string per line, ragged rows allowed.
//   - An error if the file cannot be opened or decoded.
func ReadFile(filePath string, settings config.CSVSettings) ([][]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Read(file, settings)
}

// Read reads every record from r.
func Read(r io.Reader, settings config.CSVSettings) ([][]string, error) {
	enc, err := Encoding(settings.Encoding)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(r)
	var src io.Reader = br
	if enc != nil {
		src = transform.NewReader(br, enc.NewDecoder())
	} else {
		skipBOM(br)
	}

	reader := csv.NewReader(src)
	configureReader(reader, settings)

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return records, nil
}

// configureReader sets up the CSV reader based on settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	reader.Comma = Delimiter(settings.Delimiter)

	// Allow variable number of fields per record.
	reader.FieldsPerRecord = -1

	// Exports frequently contain stray quotes inside names.
	reader.LazyQuotes = true

	reader.TrimLeadingSpace = true
}

// Delimiter maps the configured delimiter to a rune.
func Delimiter(value string) rune {
	switch value {
	case "\\t", "\t", "tab", "TAB":
		return '\t'
	case "|", "pipe", "PIPE":
		return '|'
	case ";", "semicolon":
		return ';'
	default:
		if len(value) > 0 {
			return rune(value[0])
		}
		return ','
	}
}

// Encoding resolves an encoding name. UTF-8 returns nil: no transform.
func Encoding(name string) (encoding.Encoding, error) {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "_", "-")) {
	case "", "UTF-8", "UTF8":
		return nil, nil
	case "ISO-8859-1", "LATIN1", "LATIN-1":
		return charmap.ISO8859_1, nil
	case "WINDOWS-1252", "CP1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("unsupported encoding '%s'", name)
	}
}

func skipBOM(br *bufio.Reader) {
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
}

// =============================================================================
// WRITING
// =============================================================================

// Writer writes records through the configured delimiter and encoding.
type Writer struct {
	*csv.Writer
	encoded io.Closer
}

// NewWriter wraps w. Call Close when done: it flushes the records and any
// bytes held by the encoder. The underlying writer is not closed.
func NewWriter(w io.Writer, settings config.CSVSettings) (*Writer, error) {
	enc, err := Encoding(settings.Encoding)
	if err != nil {
		return nil, err
	}
	out := &Writer{}
	if enc != nil {
		// Characters the charmap cannot represent are replaced, not fatal.
		tw := transform.NewWriter(w, encoding.ReplaceUnsupported(enc.NewEncoder()))
		out.encoded = tw
		w = tw
	}
	out.Writer = csv.NewWriter(w)
	out.Comma = Delimiter(settings.Delimiter)
	return out, nil
}

// Close flushes pending records.
func (w *Writer) Close() error {
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	if w.encoded != nil {
		return w.encoded.Close()
	}
	return nil
}

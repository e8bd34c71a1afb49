// Package csv parses record exports. Exports are delimited text with one row
// per record; the notice itself travels as a JSON document inside a single
// cell.
package csv

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode"

	"github.com/vendange/backend/pkg/loader"
	"github.com/vendange/backend/pkg/logger"
	"github.com/vendange/backend/pkg/record"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/unicode/norm"
)

const (
	columnIdentifier = "id_entitelrm"
	columnType       = "type_entite"
	columnNotice     = "intermarc"
)

// Loader parses CSV exports into records, caching parses by content hash so a
// re-uploaded file is only parsed once.
type Loader struct {
	cache   map[string][]record.Record
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewLoader creates a CSV record loader with an empty cache.
func NewLoader() *Loader {
	return &Loader{
		cache: make(map[string][]record.Record),
	}
}

// Load parses CSV content into records. Concurrent loads of identical content
// share a single parse.
func (l *Loader) Load(ctx context.Context, content []byte) ([]record.Record, error) {
	key := loader.CacheKey(content)

	l.cacheMu.RLock()
	if cached, ok := l.cache[key]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(key, func() (any, error) {
		l.cacheMu.RLock()
		if cached, ok := l.cache[key]; ok {
			l.cacheMu.RUnlock()
			return cached, nil
		}
		l.cacheMu.RUnlock()

		records, err := Parse(ctx, content)
		if err != nil {
			return nil, err
		}

		l.cacheMu.Lock()
		l.cache[key] = records
		l.cacheMu.Unlock()

		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]record.Record), nil
}

// Parse reads a CSV export into records. The delimiter is guessed from the
// header line, header names are normalized before matching, and a row whose
// notice cell fails to parse still yields a record, just without zones.
func Parse(ctx context.Context, content []byte) ([]record.Record, error) {
	delimiter := guessDelimiter(content)

	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[normalizeHeader(name)] = i
	}
	for _, required := range []string{columnIdentifier, columnType, columnNotice} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	var records []record.Record
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			logger.Warn("[CSV] Skipping malformed row", "line", line, "err", err)
			continue
		}

		cell := func(name string) string {
			idx := columns[name]
			if idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		identifier := cell(columnIdentifier)
		if identifier == "" {
			continue
		}

		r := record.Record{
			Identifier: identifier,
			Type:       cell(columnType),
		}
		r.TypeNorm = record.NormalizeType(r.Type)

		if notice := cell(columnNotice); notice != "" {
			var parsed struct {
				Zones []record.Zone `json:"zones"`
			}
			if err := json.Unmarshal([]byte(notice), &parsed); err != nil {
				logger.Warn("[CSV] Unparseable notice, keeping record without zones",
					"line", line, "id", identifier, "err", err)
			} else {
				r.Zones = parsed.Zones
			}
		}

		records = append(records, r)
	}

	return records, nil
}

// guessDelimiter picks between ';' and ',' by counting occurrences outside
// quotes on the header line. Exports from the cataloguing tools use ';'.
func guessDelimiter(content []byte) rune {
	headerEnd := bytes.IndexByte(content, '\n')
	if headerEnd < 0 {
		headerEnd = len(content)
	}
	header := content[:headerEnd]

	semicolons, commas := 0, 0
	inQuotes := false
	for _, c := range header {
		switch c {
		case '"':
			inQuotes = !inQuotes
		case ';':
			if !inQuotes {
				semicolons++
			}
		case ',':
			if !inQuotes {
				commas++
			}
		}
	}
	if semicolons >= commas && semicolons > 0 {
		return ';'
	}
	return ','
}

// normalizeHeader strips the UTF-8 BOM and control characters, applies
// compatibility normalization and lowercases, so headers match regardless of
// the exporting tool's encoding quirks.
func normalizeHeader(name string) string {
	name = strings.TrimPrefix(name, "\uFEFF")
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(name)))
}

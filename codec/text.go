package codec

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// maxLineBytes bounds a single JSON Lines record, mirroring the
// teacher's jsonl reader, which raises bufio.Scanner's default buffer
// to tolerate large individual records (internal/jsonl/reader.go).
const maxLineBytes = 64 * 1024 * 1024

// WriteTextAll writes one JSON object per line, one line per record —
// the canonical textual serialization of list-of-record spec §6 names
// for export.
func WriteTextAll[T any](w io.Writer, records []T) error {
	enc := json.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
	}
	return nil
}

// ReadTextAll parses a JSON Lines stream back into records, skipping
// blank lines, following the teacher's jsonl reader convention
// (internal/jsonl/reader.go: buffered scanner, enlarged buffer,
// line-numbered error wrapping, blank-line skip).
func ReadTextAll[T any](r io.Reader) ([]T, error) {
	var records []T
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec T
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("parse record at line %d: %w", lineNum, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan text stream: %w", err)
	}
	return records, nil
}

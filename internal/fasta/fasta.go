// Package fasta provides the minimal FASTA parsing and writing the download
// pipeline needs. Parsing is conservative: headers start with '>', sequence
// lines are concatenated verbatim.
package fasta

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Record is one FASTA record: the header text without the leading '>', and
// the sequence body.
type Record struct {
	Header string
	Seq    []byte
}

// ID returns the first whitespace-delimited token of the header.
func (r Record) ID() string {
	fields := strings.Fields(r.Header)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Parse reads all records from r.
func Parse(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var records []Record
	var current *Record
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			if current != nil {
				records = append(records, *current)
			}
			current = &Record{Header: strings.TrimSpace(line[1:])}
			continue
		}
		if current == nil {
			if strings.TrimSpace(line) == "" {
				continue
			}
			return nil, fmt.Errorf("sequence data before first FASTA header")
		}
		current.Seq = append(current.Seq, []byte(strings.TrimSpace(line))...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan FASTA: %w", err)
	}
	if current != nil {
		records = append(records, *current)
	}
	return records, nil
}

// Headers scans the file at path and returns each record's header text, in
// file order, without reading sequence bodies into memory.
func Headers(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FASTA %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var headers []string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			headers = append(headers, strings.TrimSpace(line[1:]))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan FASTA %s: %w", path, err)
	}
	return headers, nil
}

// Write writes records to w wrapped at 70 columns, matching the upstream
// record layout, and returns the number of records written.
func Write(w io.Writer, records []Record) (int, error) {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		if _, err := fmt.Fprintf(bw, ">%s\n", rec.Header); err != nil {
			return 0, err
		}
		for start := 0; start < len(rec.Seq); start += 70 {
			end := start + 70
			if end > len(rec.Seq) {
				end = len(rec.Seq)
			}
			if _, err := bw.Write(rec.Seq[start:end]); err != nil {
				return 0, err
			}
			if err := bw.WriteByte('\n'); err != nil {
				return 0, err
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return 0, err
	}
	return len(records), nil
}

// WriteFile writes records to path and returns the record count.
func WriteFile(path string, records []Record) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	n, err := Write(f, records)
	if err != nil {
		_ = f.Close()
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", path, err)
	}
	return n, nil
}

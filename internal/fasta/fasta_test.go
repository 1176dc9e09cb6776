package fasta

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse_MultiRecord(t *testing.T) {
	in := strings.NewReader(">AB123.1 Pectobacterium contig 1\nACGT\nACGT\n>AB124.1 contig 2\nTTTT\n")
	records, err := Parse(in)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID() != "AB123.1" {
		t.Fatalf("unexpected id %q", records[0].ID())
	}
	if string(records[0].Seq) != "ACGTACGT" {
		t.Fatalf("expected concatenated sequence lines, got %q", records[0].Seq)
	}
	if records[1].Header != "AB124.1 contig 2" {
		t.Fatalf("unexpected header %q", records[1].Header)
	}
}

func TestParse_RejectsBodyBeforeHeader(t *testing.T) {
	if _, err := Parse(strings.NewReader("ACGT\n>x\nACGT\n")); err == nil {
		t.Fatal("expected error for sequence before header")
	}
}

func TestWrite_WrapsAt70(t *testing.T) {
	seq := bytes.Repeat([]byte("A"), 75)
	var buf bytes.Buffer
	n, err := Write(&buf, []Record{{Header: "X1", Seq: seq}})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 record written, got %d", n)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 sequence lines, got %d: %q", len(lines), lines)
	}
	if len(lines[1]) != 70 || len(lines[2]) != 5 {
		t.Fatalf("unexpected wrapping: %d/%d", len(lines[1]), len(lines[2]))
	}
}

func TestHeaders(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "g.fasta")
	content := ">AB1 one\nACGT\n>AB2 two\nACGT\n>AB3 three\nACGT\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	headers, err := Headers(path)
	if err != nil {
		t.Fatalf("headers: %v", err)
	}
	if len(headers) != 3 || headers[2] != "AB3 three" {
		t.Fatalf("unexpected headers %q", headers)
	}
}

func TestParseWriteRoundTrip(t *testing.T) {
	records := []Record{
		{Header: "GCA_1 contig", Seq: []byte("ACGTACGTAA")},
		{Header: "GCA_2 contig", Seq: []byte("TTGGCC")},
	}
	var buf bytes.Buffer
	if _, err := Write(&buf, records); err != nil {
		t.Fatalf("write: %v", err)
	}
	back, err := Parse(&buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(back) != 2 || string(back[0].Seq) != "ACGTACGTAA" || back[1].Header != "GCA_2 contig" {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}

package fetch

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseArchiveRef(t *testing.T) {
	ref, err := ParseArchiveRef("gi|555|emb|ABCD01000000.4|ABCD01000000")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ref.Stem != "ABCD01" || ref.Version != 4 {
		t.Fatalf("unexpected ref %+v", ref)
	}
	if ref.Filename() != "ABCD01.4.fsa_nt.gz" {
		t.Fatalf("unexpected filename %s", ref.Filename())
	}
}

func TestParseArchiveRef_UnrecognizedFormats(t *testing.T) {
	cases := []string{
		"",
		"gi|555",
		"gi|555|emb|NOVERSION|ABCD01000000",
		"gi|555|emb|ABCD01000000.x|ABCD01000000",
		"gi|555|emb|ABCD01000000.0|ABCD01000000",
		"gi|555|emb|ABCD01000000.4|AB",
	}
	for _, extra := range cases {
		if _, err := ParseArchiveRef(extra); !errors.Is(err, ErrAnnotationFormat) {
			t.Fatalf("extra %q: expected ErrAnnotationFormat, got %v", extra, err)
		}
	}
}

func TestDownload_VersionDecrementFindsWorkingArchive(t *testing.T) {
	payload := []byte("pretend-gzip-bytes")
	var probed []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("download")
		probed = append(probed, name)
		switch {
		case strings.HasSuffix(name, ".md5"):
			fmt.Fprintf(w, "0123456789abcdef0123456789abcdef  %s\n", strings.TrimSuffix(name, ".md5"))
		case name == "ABCDEF.2.fsa_nt.gz":
			w.Header().Set("Content-Length", fmt.Sprint(len(payload)))
			_, _ = w.Write(payload)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	outDir := t.TempDir()
	f := &ArchiveFetcher{WGSBaseURL: srv.URL + "/", OutDir: outDir}
	outcome, err := f.Download(ArchiveRef{Stem: "ABCDEF", Version: 4})
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if outcome.Skipped {
		t.Fatal("expected successful outcome")
	}
	if filepath.Base(outcome.LocalPath) != "ABCDEF.2.fsa_nt.gz" {
		t.Fatalf("expected version 2 archive, got %s", outcome.LocalPath)
	}
	data, err := os.ReadFile(outcome.LocalPath)
	if err != nil || string(data) != string(payload) {
		t.Fatalf("archive contents mismatch: %v %q", err, data)
	}
	if outcome.HashPath == "" {
		t.Fatal("expected hash sidecar to be written")
	}

	wantOrder := []string{"ABCDEF.4.fsa_nt.gz", "ABCDEF.3.fsa_nt.gz", "ABCDEF.2.fsa_nt.gz", "ABCDEF.2.fsa_nt.gz.md5"}
	if len(probed) != len(wantOrder) {
		t.Fatalf("unexpected probe sequence %v", probed)
	}
	for i, want := range wantOrder {
		if probed[i] != want {
			t.Fatalf("probe %d: want %s got %s", i, want, probed[i])
		}
	}
}

func TestDownload_ExhaustionSkipsAtVersionZero(t *testing.T) {
	var probes int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		probes++
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := &ArchiveFetcher{WGSBaseURL: srv.URL + "/", OutDir: t.TempDir()}
	outcome, err := f.Download(ArchiveRef{Stem: "ABCDEF", Version: 3})
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if !outcome.Skipped {
		t.Fatal("expected skipped outcome after version exhaustion")
	}
	if probes != 3 {
		t.Fatalf("expected probes for versions 3,2,1 only, got %d", probes)
	}
	if !strings.Contains(outcome.URL, "ABCDEF.1.fsa_nt.gz") {
		t.Fatalf("expected last attempted URL recorded, got %s", outcome.URL)
	}
}

func TestDownload_MissingHashSidecarTolerated(t *testing.T) {
	payload := []byte("bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("download")
		if strings.HasSuffix(name, ".md5") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Length", fmt.Sprint(len(payload)))
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	f := &ArchiveFetcher{WGSBaseURL: srv.URL + "/", OutDir: t.TempDir()}
	outcome, err := f.Download(ArchiveRef{Stem: "ABCDEF", Version: 1})
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if outcome.Skipped || outcome.HashPath != "" {
		t.Fatalf("expected success without sidecar, got %+v", outcome)
	}
}

func TestStreamToFile_ShortBodyIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		_, _ = w.Write([]byte("short"))
	}))
	defer srv.Close()

	f := &ArchiveFetcher{WGSBaseURL: srv.URL + "/", OutDir: t.TempDir()}
	if _, err := f.Download(ArchiveRef{Stem: "ABCDEF", Version: 1}); err == nil {
		t.Fatal("expected short download to be a hard error")
	}
}

// Package fetch acquires sequence data for one assembly: the batched direct
// path over efetch, and the WGS master archive fallback with version-skew
// recovery, plus hash verification of downloaded archives.
package fetch

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"taxseq/internal/entrez"
)

// DefaultWGSBaseURL is the archive download endpoint.
const DefaultWGSBaseURL = "https://www.ncbi.nlm.nih.gov/Traces/wgs/"

const downloadBlockSize = 1 << 20

// ArchiveRef locates a WGS master archive: the download filename stem and the
// archive version to probe first. The version may legitimately disagree with
// the assembly's own version; the probe loop decrements it on failure.
type ArchiveRef struct {
	Stem    string
	Version int
}

// Filename returns the archive filename for the ref's current version.
func (r ArchiveRef) Filename() string {
	return fmt.Sprintf("%s.%d.fsa_nt.gz", r.Stem, r.Version)
}

// ErrAnnotationFormat reports that the repository's semi-structured summary
// annotation no longer matches the fixed field-position convention this
// parser depends on.
var ErrAnnotationFormat = errors.New("annotation format unrecognized")

// ParseArchiveRef extracts the download stem and version from a nuccore
// esummary 'extra' annotation. By external-format convention the stem is the
// first six characters of the last '|'-field and the version is the numeric
// suffix of the fourth '|'-field.
func ParseArchiveRef(extra string) (ArchiveRef, error) {
	fields := strings.Split(extra, "|")
	if len(fields) < 4 {
		return ArchiveRef{}, fmt.Errorf("%w: %d fields in %q", ErrAnnotationFormat, len(fields), extra)
	}
	last := fields[len(fields)-1]
	if len(last) < 6 {
		return ArchiveRef{}, fmt.Errorf("%w: stem field %q too short", ErrAnnotationFormat, last)
	}
	stem := last[:6]

	versioned := fields[3]
	dot := strings.LastIndex(versioned, ".")
	if dot < 0 || dot == len(versioned)-1 {
		return ArchiveRef{}, fmt.Errorf("%w: no version suffix in %q", ErrAnnotationFormat, versioned)
	}
	version, err := strconv.Atoi(versioned[dot+1:])
	if err != nil || version <= 0 {
		return ArchiveRef{}, fmt.Errorf("%w: version suffix %q", ErrAnnotationFormat, versioned[dot+1:])
	}
	return ArchiveRef{Stem: stem, Version: version}, nil
}

// Outcome reports one archive acquisition. Skipped means no bytes were
// retrieved for any candidate version; a skipped outcome must not be hashed
// or extracted.
type Outcome struct {
	LocalPath string
	HashPath  string
	URL       string
	Skipped   bool
}

// ArchiveFetcher downloads WGS master archives.
type ArchiveFetcher struct {
	Client     *entrez.Client
	HTTP       *http.Client
	WGSBaseURL string
	OutDir     string
}

func (f *ArchiveFetcher) httpClient() *http.Client {
	if f.HTTP != nil {
		return f.HTTP
	}
	return &http.Client{}
}

func (f *ArchiveFetcher) baseURL() string {
	if f.WGSBaseURL != "" {
		return f.WGSBaseURL
	}
	return DefaultWGSBaseURL
}

func (f *ArchiveFetcher) log() *zap.Logger {
	if f.Client != nil {
		return f.Client.Logger()
	}
	return zap.NewNop()
}

// Resolve derives the archive reference for a wgsmaster-linked nuccore UID.
func (f *ArchiveFetcher) Resolve(wgsUID string) (ArchiveRef, error) {
	f.log().Info("processing wgsmaster uid", zap.String("uid", wgsUID))
	summary, err := f.Client.FetchNuccoreSummary(wgsUID)
	if err != nil {
		return ArchiveRef{}, err
	}
	ref, err := ParseArchiveRef(summary.Extra)
	if err != nil {
		return ArchiveRef{}, fmt.Errorf("wgsmaster uid %s: %w", wgsUID, err)
	}
	return ref, nil
}

// Download probes candidate archive URLs from ref.Version downward until a
// content-length is obtained, then streams the archive to the output
// directory and fetches the MD5 sidecar best-effort. The version search
// terminates at version 0, never negative; exhaustion yields a skipped
// outcome carrying the last URL tried.
func (f *ArchiveFetcher) Download(ref ArchiveRef) (Outcome, error) {
	log := f.log()
	lastURL := ""
	for version := ref.Version; version >= 1; version-- {
		candidate := ArchiveRef{Stem: ref.Stem, Version: version}
		dlURL := f.baseURL() + "?download=" + candidate.Filename()
		lastURL = dlURL
		log.Info("trying archive URL", zap.String("url", dlURL))

		resp, err := f.httpClient().Get(dlURL)
		if err != nil {
			log.Warn("archive probe failed", zap.String("url", dlURL), zap.Error(err))
			continue
		}
		if resp.StatusCode != http.StatusOK || resp.ContentLength <= 0 {
			_ = resp.Body.Close()
			log.Warn("archive probe failed",
				zap.String("url", dlURL),
				zap.String("status", resp.Status),
				zap.Int64("content_length", resp.ContentLength),
			)
			if version > 1 {
				log.Info("retrying with decremented version", zap.Int("version", version-1))
			}
			continue
		}

		localPath := filepath.Join(f.OutDir, candidate.Filename())
		log.Info("downloading archive",
			zap.String("file", candidate.Filename()),
			zap.Int64("bytes", resp.ContentLength),
		)
		if err := streamToFile(resp.Body, localPath, resp.ContentLength, log); err != nil {
			_ = resp.Body.Close()
			// Bytes were flowing and stopped: fatal for the run, not a probe
			// failure.
			return Outcome{}, fmt.Errorf("download %s: %w", dlURL, err)
		}
		_ = resp.Body.Close()

		hashPath := f.fetchHashSidecar(dlURL, localPath)
		return Outcome{LocalPath: localPath, HashPath: hashPath, URL: dlURL}, nil
	}

	log.Error("all archive versions exhausted",
		zap.String("stem", ref.Stem),
		zap.Int("from_version", ref.Version),
		zap.String("last_url", lastURL),
	)
	return Outcome{URL: lastURL, Skipped: true}, nil
}

// fetchHashSidecar retrieves the server-declared MD5 for a downloaded
// archive. Absence is tolerated; the integrity check is best-effort.
func (f *ArchiveFetcher) fetchHashSidecar(dlURL, localPath string) string {
	resp, err := f.httpClient().Get(dlURL + ".md5")
	if err != nil {
		f.log().Warn("hash sidecar fetch failed", zap.String("url", dlURL+".md5"), zap.Error(err))
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		f.log().Warn("hash sidecar unavailable", zap.String("url", dlURL+".md5"), zap.String("status", resp.Status))
		return ""
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}
	hashPath := localPath + ".md5"
	if err := os.WriteFile(hashPath, data, 0o644); err != nil {
		f.log().Warn("write hash sidecar failed", zap.String("path", hashPath), zap.Error(err))
		return ""
	}
	return hashPath
}

func streamToFile(r io.Reader, path string, declared int64, log *zap.Logger) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	buf := make([]byte, downloadBlockSize)
	var received int64
	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			if _, err := out.Write(buf[:n]); err != nil {
				_ = out.Close()
				return fmt.Errorf("write %s: %w", path, err)
			}
			received += int64(n)
			if declared > 0 {
				log.Info("download progress",
					zap.Int64("bytes", received),
					zap.String("pct", fmt.Sprintf("%3.2f%%", float64(received)*100/float64(declared))),
				)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			_ = out.Close()
			return fmt.Errorf("read response body: %w", readErr)
		}
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if declared > 0 && received != declared {
		return fmt.Errorf("received %d bytes, server declared %d", received, declared)
	}
	return nil
}

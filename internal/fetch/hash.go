package fetch

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// HashStatus is the result of comparing a locally computed digest against the
// server-declared one. A failed comparison is informational: callers log it
// and proceed.
type HashStatus struct {
	LocalHash  string
	RemoteHash string
	Passed     bool
}

// CheckHash computes the MD5 of the file at localPath and compares it against
// the digest declared in hashPath (md5sum format: one or more
// "<hex>  <filename>" lines; the line naming localPath's base name wins,
// otherwise the first line is used).
func CheckHash(localPath, hashPath string) (HashStatus, error) {
	local, err := fileMD5(localPath)
	if err != nil {
		return HashStatus{}, err
	}
	remote, err := declaredMD5(hashPath, filepath.Base(localPath))
	if err != nil {
		return HashStatus{}, err
	}
	return HashStatus{
		LocalHash:  local,
		RemoteHash: remote,
		Passed:     local == remote,
	}, nil
}

func fileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func declaredMD5(hashPath, baseName string) (string, error) {
	data, err := os.ReadFile(hashPath)
	if err != nil {
		return "", fmt.Errorf("read hash file %s: %w", hashPath, err)
	}
	lines := strings.Split(string(data), "\n")
	first := ""
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if first == "" {
			first = fields[0]
		}
		if len(fields) > 1 && strings.HasSuffix(fields[len(fields)-1], baseName) {
			return strings.ToLower(fields[0]), nil
		}
	}
	if first == "" {
		return "", fmt.Errorf("hash file %s contains no digest", hashPath)
	}
	return strings.ToLower(first), nil
}

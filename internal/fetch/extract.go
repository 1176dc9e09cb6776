package fetch

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// CheckDependencies verifies the external decompression tool is available.
func CheckDependencies() error {
	if _, err := exec.LookPath("gunzip"); err != nil {
		return fmt.Errorf("missing dependency: gunzip is not installed or not on PATH")
	}
	return nil
}

// ExtractArchive decompresses archivePath into destPath using the external
// gunzip tool, keeping the archive in place.
func ExtractArchive(archivePath, destPath string) error {
	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}

	cmd := exec.Command("gunzip", "-c", archivePath)
	var stderr bytes.Buffer
	cmd.Stdout = out
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	closeErr := out.Close()
	if runErr != nil {
		return fmt.Errorf("gunzip %s: %w: %s", archivePath, runErr, strings.TrimSpace(stderr.String()))
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", destPath, closeErr)
	}
	return nil
}

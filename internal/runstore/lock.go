package runstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	runLockDirName   = ".run.lock"
	runLockOwnerFile = "owner.json"
)

// RunLock guards an output directory against a second concurrent run. The
// owner record names the taxon set being downloaded so a contending run's
// error says what is already in flight.
type RunLock struct {
	lockDir string
}

type runLockOwner struct {
	PID       int      `json:"pid"`
	CreatedAt string   `json:"created_at"`
	Hostname  string   `json:"hostname,omitempty"`
	TaxonIDs  []string `json:"taxon_ids,omitempty"`
}

func AcquireRunLock(outDir string, taxonIDs []string) (RunLock, error) {
	target := strings.TrimSpace(outDir)
	if target == "" {
		return RunLock{}, fmt.Errorf("output directory is required")
	}

	lockDir := filepath.Join(target, runLockDirName)
	if err := os.Mkdir(lockDir, 0o755); err != nil {
		if os.IsExist(err) {
			ownerPath := filepath.Join(lockDir, runLockOwnerFile)
			var owner runLockOwner
			if readErr := ReadJSON(ownerPath, &owner); readErr == nil && owner.PID > 0 && owner.CreatedAt != "" {
				return RunLock{}, fmt.Errorf(
					"output directory is locked: %s (pid=%d created_at=%s host=%s taxa=%s)",
					target, owner.PID, owner.CreatedAt, owner.Hostname,
					strings.Join(owner.TaxonIDs, ","),
				)
			}
			return RunLock{}, fmt.Errorf("output directory is locked: %s", target)
		}
		return RunLock{}, fmt.Errorf("acquire run lock for %s: %w", target, err)
	}

	owner := runLockOwner{
		PID:       os.Getpid(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Hostname:  hostnameOrUnknown(),
		TaxonIDs:  taxonIDs,
	}
	ownerPath := filepath.Join(lockDir, runLockOwnerFile)
	if err := WriteJSON(ownerPath, owner); err != nil {
		_ = os.Remove(lockDir)
		return RunLock{}, fmt.Errorf("write run lock owner for %s: %w", target, err)
	}

	return RunLock{lockDir: lockDir}, nil
}

func (l RunLock) Release() error {
	if strings.TrimSpace(l.lockDir) == "" {
		return nil
	}
	_ = os.Remove(filepath.Join(l.lockDir, runLockOwnerFile))
	if err := os.Remove(l.lockDir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("release run lock %s: %w", l.lockDir, err)
	}
	return nil
}

func hostnameOrUnknown() string {
	host, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	host = strings.TrimSpace(host)
	if host == "" {
		return "unknown"
	}
	return host
}

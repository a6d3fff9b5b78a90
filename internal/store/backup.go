package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const backupTimestampLayout = "20060102T150405"

// Backup copies the current session and document files into the backup
// directory under a shared timestamp and returns that timestamp. It is a
// manual point-in-time snapshot, not crash recovery.
func (s *Store) Backup() (string, error) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	s.documentsMu.Lock()
	defer s.documentsMu.Unlock()

	stamp := time.Now().Format(backupTimestampLayout)
	for _, name := range []string{sessionsFile, documentsFile} {
		src := filepath.Join(s.dataDir, name)
		dst := filepath.Join(s.backupDir, fmt.Sprintf("%s_%s", stamp, name))
		if err := copyFile(src, dst); err != nil {
			return "", err
		}
	}
	return stamp, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if os.IsNotExist(err) {
		// Nothing persisted yet for this collection; snapshot an empty file
		// so a restore of this timestamp is self-consistent.
		return os.WriteFile(dst, []byte("{}\n"), 0o644)
	}
	if err != nil {
		return fmt.Errorf("open %s failed: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s failed: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy to %s failed: %w", dst, err)
	}
	return out.Close()
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFailure is the fatal error for an artifact that could not be
// persisted after bounded retries. The CLI maps it to exit code 2.
type WriteFailure struct {
	Path string
	Err  error
}

func (e *WriteFailure) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteFailure) Unwrap() error {
	return e.Err
}

const defaultMaxWriteRetries = 3

// writeAtomic persists content at path by writing a temporary file in the
// same directory and renaming it into place, so a failed or cancelled run
// never leaves a half-written artifact. Transient write errors are retried
// up to maxRetries times before the failure is reported as fatal.
func writeAtomic(path, content string, maxRetries int) error {
	if maxRetries <= 0 {
		maxRetries = defaultMaxWriteRetries
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if lastErr = tryWrite(path, content); lastErr == nil {
			return nil
		}
	}
	return &WriteFailure{Path: path, Err: lastErr}
}

func tryWrite(path, content string) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// ensureDir creates the output directory if needed.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &WriteFailure{Path: dir, Err: err}
	}
	return nil
}

// cleanupTemps removes any stranded .tmp files under dir after a failed run.
func cleanupTemps(dir string) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if err != nil {
		return
	}
	for _, m := range matches {
		os.Remove(m)
	}
}

package report

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ReportWriteError reports a destination that could not be written. It is
// a recoverable outcome: the rendered HTML is still valid.
type ReportWriteError struct {
	Path string
	Err  error
}

func (e *ReportWriteError) Error() string {
	return fmt.Sprintf("report: write %q: %v", e.Path, e.Err)
}

func (e *ReportWriteError) Unwrap() error {
	return e.Err
}

// PersistOptions controls how the destination is prepared.
type PersistOptions struct {
	// CreateDirs creates missing parent directories of the destination.
	CreateDirs bool
}

// Persist writes html to path, fully replacing any previous content. The
// document is written to a sibling temp file and renamed into place, so a
// failed write never leaves a truncated report behind. A symlinked
// destination has its target replaced, and an existing report keeps its
// permissions. Every failure is a *ReportWriteError.
func Persist(html string, path string, opts PersistOptions) (retErr error) {
	target, err := resolveDestination(path)
	if err != nil {
		return &ReportWriteError{Path: path, Err: err}
	}
	mode := os.FileMode(0o644)
	if info, err := os.Stat(target); err == nil {
		if info.IsDir() {
			return &ReportWriteError{Path: path, Err: fmt.Errorf("%s is a directory", target)}
		}
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(target)
	if opts.CreateDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &ReportWriteError{Path: path, Err: fmt.Errorf("mkdir: %w", err)}
		}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return &ReportWriteError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	defer func() {
		if retErr != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.WriteString(html); err != nil {
		return &ReportWriteError{Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return &ReportWriteError{Path: path, Err: err}
	}
	if err := tmp.Chmod(mode); err != nil {
		return &ReportWriteError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &ReportWriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, target); err != nil {
		return &ReportWriteError{Path: path, Err: err}
	}
	return nil
}

// resolveDestination follows symlinks at path, including a link whose target
// does not exist yet.
func resolveDestination(path string) (string, error) {
	target := path
	for hops := 0; ; hops++ {
		info, err := os.Lstat(target)
		if errors.Is(err, fs.ErrNotExist) {
			return target, nil
		}
		if err != nil {
			return "", err
		}
		if info.Mode()&fs.ModeSymlink == 0 {
			return target, nil
		}
		if hops == maxSymlinkHops {
			return "", fmt.Errorf("too many symlinks resolving %s", path)
		}
		link, err := os.Readlink(target)
		if err != nil {
			return "", err
		}
		if !filepath.IsAbs(link) {
			link = filepath.Join(filepath.Dir(target), link)
		}
		target = link
	}
}

const maxSymlinkHops = 40

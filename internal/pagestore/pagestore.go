// Copyright (c) 2026 Comicshelf. All rights reserved.
// Author: lin.kaiwen.tw@gmail.com

/*
Package pagestore manages the on-disk filesystem lifecycle of comic page images.

Each comic owns one directory under a configurable uploads root, named by its
sanitized folder identifier. The package is deliberately unaware of the
catalog: keeping the directory and the database record consistent is the
service layer's responsibility.

Core Responsibilities:

  - Placement: One directory per comic, page files named by upload time.
  - Durability: Page writes go through a temp file + atomic rename.
  - Containment: Folder names are verified to resolve under the uploads root.
*/
package pagestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
)

// Store persists page images on the local filesystem under a single root
// directory.
//
// # Concurrency
//
// Store is safe for concurrent use. The filename sequence counter is atomic,
// so two pages written in the same millisecond (within one batch or across
// concurrent batches) still receive distinct names.
type Store struct {
	root string
	seq  atomic.Uint64
}

// NewStore creates a page store rooted at root, creating the directory if needed.
func NewStore(root string) (*Store, error) {
	// MkdirAll keeps the call idempotent across restarts.
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("pagestore: create uploads root %q: %w", root, err)
	}

	// Resolve to an absolute path so containment checks are stable.
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("pagestore: resolve uploads root: %w", err)
	}

	return &Store{root: absRoot}, nil
}

// Root returns the absolute uploads root directory.
//
// It is used by the HTTP layer to mount the static /uploads file server.
func (store *Store) Root() string {
	return store.root
}

// dir resolves a comic folder identifier to its absolute directory path.
//
// Folder names are produced by the sanitizer and should never contain path
// separators, but the containment check guards against anything that slips
// through and would otherwise escape the uploads root.
func (store *Store) dir(folder string) (string, error) {
	joined := filepath.Join(store.root, filepath.Clean(filepath.FromSlash(folder)))

	rel, err := filepath.Rel(store.root, joined)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("pagestore: folder %q escapes uploads root", folder)
	}

	return joined, nil
}

/*
EnsureDir creates the comic's directory (including parents) if absent.

Description: Idempotent. Fails when the path exists as a regular file or
when permissions deny creation.

Parameters:
  - folder: string (Sanitized comic folder name)

Returns:
  - error: Containment or filesystem failures
*/
func (store *Store) EnsureDir(folder string) error {
	path, err := store.dir(folder)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(path, 0o750); err != nil {
		return fmt.Errorf("pagestore: create dir %q: %w", folder, err)
	}

	return nil
}

/*
WritePage streams one uploaded page into the comic's directory.

Description: The generated filename is <epochMillis>_<seq><ext>, where seq is
a process-wide atomic counter. The sequence component removes the collision
window of purely timestamp-based names when several pages arrive within the
same millisecond. The file is written to a temp path and atomically renamed
into place so readers never observe a partial page.

Parameters:
  - folder: string (Sanitized comic folder name)
  - originalName: string (Client-supplied filename; only its extension is kept)
  - reader: io.Reader (Page bytes)

Returns:
  - string: The generated filename (relative to the comic's directory)
  - error: Containment or filesystem failures
*/
func (store *Store) WritePage(folder, originalName string, reader io.Reader) (string, error) {
	path, err := store.dir(folder)
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("%d_%04d%s",
		time.Now().UnixMilli(),
		store.seq.Add(1)%10000,
		strings.ToLower(filepath.Ext(originalName)),
	)
	dest := filepath.Join(path, filename)

	tmp := dest + ".tmp"
	file, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return "", fmt.Errorf("pagestore: open tmp %q: %w", tmp, err)
	}

	_, copyErr := io.Copy(file, reader)
	closeErr := file.Close()

	if copyErr != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("pagestore: stream page: %w", copyErr)
	}
	if closeErr != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("pagestore: flush page: %w", closeErr)
	}

	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("pagestore: rename page into place: %w", err)
	}

	return filename, nil
}

/*
ListFiles enumerates the page filenames in a comic's directory.

Description: Returns an empty slice (not an error) when the directory does
not exist. Sub-directories are skipped.

Parameters:
  - folder: string (Sanitized comic folder name)

Returns:
  - []string: Filenames in lexical order (upload order, given timestamped names)
  - error: Containment or filesystem failures
*/
func (store *Store) ListFiles(folder string) ([]string, error) {
	path, err := store.dir(folder)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("pagestore: list dir %q: %w", folder, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			files = append(files, entry.Name())
		}
	}

	return files, nil
}

/*
TotalSize sums the byte size of every regular file directly under the
comic's directory.

Description: Returns 0 (not an error) when the directory is absent. A
record whose directory has gone missing reports an empty footprint rather
than failing the details view.

Parameters:
  - folder: string (Sanitized comic folder name)

Returns:
  - int64: Total bytes
  - error: Containment or filesystem failures
*/
func (store *Store) TotalSize(folder string) (int64, error) {
	path, err := store.dir(folder)
	if err != nil {
		return 0, err
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("pagestore: stat dir %q: %w", folder, err)
	}

	var total int64
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return 0, fmt.Errorf("pagestore: stat %q: %w", entry.Name(), err)
		}
		total += info.Size()
	}

	return total, nil
}

/*
DeleteDir recursively removes a comic's directory and every page in it.

Description: A missing directory is a successful no-op, which keeps comic
deletion idempotent from the filesystem's point of view.

Parameters:
  - folder: string (Sanitized comic folder name)

Returns:
  - error: Containment or filesystem failures
*/
func (store *Store) DeleteDir(folder string) error {
	path, err := store.dir(folder)
	if err != nil {
		return err
	}

	if err := os.RemoveAll(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("pagestore: delete dir %q: %w", folder, err)
	}

	return nil
}

/*
RemoveFiles deletes specific page files from a comic's directory.

Description: Compensation helper for failed ingestions. It removes only the
files written by the aborted batch, then removes the directory if the batch
was the sole occupant. Missing files are ignored.

Parameters:
  - folder: string (Sanitized comic folder name)
  - filenames: []string (Files written by the aborted batch)

Returns:
  - error: The first containment or filesystem failure encountered
*/
func (store *Store) RemoveFiles(folder string, filenames []string) error {
	path, err := store.dir(folder)
	if err != nil {
		return err
	}

	for _, name := range filenames {
		target := filepath.Join(path, filepath.Base(name))
		if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("pagestore: remove %q: %w", name, err)
		}
	}

	// Drop the directory too when the aborted batch was all it held.
	// os.Remove fails on non-empty directories, which is exactly what we want.
	_ = os.Remove(path)

	return nil
}

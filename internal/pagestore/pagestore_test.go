// Copyright (c) 2026 Comicshelf. All rights reserved.
// Author: lin.kaiwen.tw@gmail.com

package pagestore_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkaiwen/comicshelf/internal/pagestore"
)

func newTestStore(t *testing.T) *pagestore.Store {
	t.Helper()
	store, err := pagestore.NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

/*
TestWritePage_OrderAndUniqueness writes a batch of pages and verifies that
the generated names are unique and enumerate in write order.
*/
func TestWritePage_OrderAndUniqueness(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.EnsureDir("One_Piece"))

	var written []string
	for i := 0; i < 20; i++ {
		name, err := store.WritePage("One_Piece", "page.JPG", strings.NewReader("data"))
		require.NoError(t, err)

		assert.True(t, strings.HasSuffix(name, ".jpg"), "extension should be lowercased: %s", name)
		written = append(written, name)
	}

	// All names distinct even when written within the same millisecond
	seen := map[string]bool{}
	for _, name := range written {
		assert.False(t, seen[name], "duplicate filename %s", name)
		seen[name] = true
	}

	// Lexical enumeration preserves write order
	files, err := store.ListFiles("One_Piece")
	require.NoError(t, err)
	assert.Equal(t, written, files)
}

/*
TestListFiles_AbsentDir returns an empty slice, not an error.
*/
func TestListFiles_AbsentDir(t *testing.T) {
	store := newTestStore(t)

	files, err := store.ListFiles("Nothing_Here")
	require.NoError(t, err)
	assert.Empty(t, files)
}

/*
TestTotalSize sums regular files and reports 0 for absent directories.
*/
func TestTotalSize(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.EnsureDir("Berserk"))

	_, err := store.WritePage("Berserk", "a.png", strings.NewReader(strings.Repeat("x", 1000)))
	require.NoError(t, err)
	_, err = store.WritePage("Berserk", "b.png", strings.NewReader(strings.Repeat("x", 24)))
	require.NoError(t, err)

	size, err := store.TotalSize("Berserk")
	require.NoError(t, err)
	assert.Equal(t, int64(1024), size)

	size, err = store.TotalSize("Absent")
	require.NoError(t, err)
	assert.Zero(t, size)
}

/*
TestDeleteDir removes all content and is a no-op when the directory is absent.
*/
func TestDeleteDir(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.EnsureDir("Akira"))

	_, err := store.WritePage("Akira", "p.jpg", strings.NewReader("page"))
	require.NoError(t, err)

	require.NoError(t, store.DeleteDir("Akira"))
	_, statErr := os.Stat(filepath.Join(store.Root(), "Akira"))
	assert.True(t, os.IsNotExist(statErr))

	// Second delete is still fine
	assert.NoError(t, store.DeleteDir("Akira"))
}

/*
TestRemoveFiles deletes only the named batch and drops the emptied directory.
*/
func TestRemoveFiles(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.EnsureDir("Monster"))

	first, err := store.WritePage("Monster", "a.jpg", strings.NewReader("a"))
	require.NoError(t, err)
	second, err := store.WritePage("Monster", "b.jpg", strings.NewReader("b"))
	require.NoError(t, err)

	// Removing one file keeps the directory and the other file
	require.NoError(t, store.RemoveFiles("Monster", []string{first}))
	files, err := store.ListFiles("Monster")
	require.NoError(t, err)
	assert.Equal(t, []string{second}, files)

	// Removing the rest drops the now-empty directory
	require.NoError(t, store.RemoveFiles("Monster", []string{second}))
	_, statErr := os.Stat(filepath.Join(store.Root(), "Monster"))
	assert.True(t, os.IsNotExist(statErr))
}

/*
TestFolderContainment rejects folder names that would escape the uploads root.
*/
func TestFolderContainment(t *testing.T) {
	store := newTestStore(t)

	for _, folder := range []string{"..", "../outside", "."} {
		t.Run(folder, func(t *testing.T) {
			assert.Error(t, store.EnsureDir(folder))

			_, err := store.ListFiles(folder)
			assert.Error(t, err)

			assert.Error(t, store.DeleteDir(folder))
		})
	}
}

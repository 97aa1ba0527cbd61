package sync

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/repeat/internal/storage"
)

func openTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "repeat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func writeCards(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDetectKind(t *testing.T) {
	cases := map[string]string{
		"git@github.com:user/cards.git": storage.SourceGit,
		"https://github.com/user/cards": storage.SourceGit,
		"http://example.com/cards.git":  storage.SourceGit,
		"/home/user/cards":              storage.SourceLocal,
		"relative/cards":                storage.SourceLocal,
	}
	for path, want := range cases {
		assert.Equal(t, want, DetectKind(path), path)
	}
}

func TestScanRegistersNewCards(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	dir := t.TempDir()
	writeCards(t, dir, "go.md", "Q: One\nA: 1\n---\nQ: Two\nA: 2\n")
	writeCards(t, dir, "notes.txt", "Q: Not parsed\nA: wrong extension\n")

	known, err := Scan(ctx, db, dir)
	require.NoError(t, err)
	assert.Len(t, known, 2, "only markdown files contribute cards")

	rows, err := db.ScanAll(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestScanIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	dir := t.TempDir()
	writeCards(t, dir, "go.md", "Q: One\nA: 1\n")

	_, err := Scan(ctx, db, dir)
	require.NoError(t, err)
	rows, err := db.ScanAll(ctx)
	require.NoError(t, err)
	firstAddedAt := rows[0].AddedAt

	_, err = Scan(ctx, db, dir)
	require.NoError(t, err)
	rows, err = db.ScanAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, firstAddedAt, rows[0].AddedAt)
}

func TestEditedCardLeavesStaleRowBehind(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	dir := t.TempDir()
	path := writeCards(t, dir, "go.md", "Q: Original\nA: answer\n")

	known, err := Scan(ctx, db, dir)
	require.NoError(t, err)
	require.Len(t, known, 1)
	var originalHash string
	for h := range known {
		originalHash = h
	}

	require.NoError(t, os.WriteFile(path, []byte("Q: Edited\nA: answer\n"), 0o644))

	known, err = Scan(ctx, db, dir)
	require.NoError(t, err)
	require.Len(t, known, 1)
	_, stillKnown := known[originalHash]
	assert.False(t, stillKnown, "edited content gets a new identity")

	rows, err := db.ScanAll(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 2, "the old row is inert but never deleted")
}

func TestDuplicateCardsAcrossFilesShareOneIdentity(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	dir := t.TempDir()
	writeCards(t, dir, "a.md", "Q: Same\nA: card\n")
	writeCards(t, dir, "b.md", "Q: Same\nA: card\n")

	known, err := Scan(ctx, db, dir)
	require.NoError(t, err)
	assert.Len(t, known, 1)

	rows, err := db.ScanAll(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestRunWithoutSources(t *testing.T) {
	db := openTestDB(t)
	known, err := Run(context.Background(), db, t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, known)
}

func TestRunWithLocalSource(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	dir := t.TempDir()
	writeCards(t, dir, "go.md", "Q: One\nA: 1\n")

	id, err := db.InsertSource(ctx, dir, storage.SourceLocal)
	require.NoError(t, err)

	known, err := Run(ctx, db, t.TempDir())
	require.NoError(t, err)
	assert.Len(t, known, 1)

	s, err := db.FindSourceByPath(ctx, dir)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, id, s.ID)
	assert.True(t, s.LastScanned.Valid, "sync stamps the source")
}

func TestGitURLToLocalPath(t *testing.T) {
	path, err := gitURLToLocalPath("repos", "https://github.com/user/cards.git")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("repos", "github.com", "user", "cards"), path)

	path, err = gitURLToLocalPath("repos", "git@github.com:user/cards.git")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("repos", "github.com", "user", "cards"), path)

	_, err = gitURLToLocalPath("repos", "not a url at all")
	assert.Error(t, err)
}

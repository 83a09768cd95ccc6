package loader_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/gestmag"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/loader"
)

// fakeStore records every call and can be scripted to fail.
type fakeStore struct {
	cleared    bool
	clearErr   error
	chunks     [][]any
	insertFn   func(call int, docs []any) (int, error)
	insertCall int
}

func (s *fakeStore) Clear(ctx context.Context) (int64, error) {
	s.cleared = true
	return 0, s.clearErr
}

func (s *fakeStore) Insert(ctx context.Context, docs []any) (int, error) {
	s.insertCall++
	s.chunks = append(s.chunks, docs)
	if s.insertFn != nil {
		return s.insertFn(s.insertCall, docs)
	}
	return len(docs), nil
}

func writeArchive(t *testing.T, rows int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("CODE,PRIX\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "A-%03d,%d\n", i, i)
	}
	path := filepath.Join(t.TempDir(), "article.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
	return path
}

func TestLoadMissingArchive(t *testing.T) {
	store := &fakeStore{}
	l := &loader.Loader{}

	out := l.Load(context.Background(), store, "DUC", gestmag.KindArticle, filepath.Join(t.TempDir(), "nope.dbf"))

	require.True(t, out.MissingArchive)
	require.True(t, out.Failed())
	require.False(t, store.cleared, "a missing archive must not clear the destination")
	require.Empty(t, store.chunks)
}

func TestLoadClearFailure(t *testing.T) {
	store := &fakeStore{clearErr: errors.New("boom")}
	l := &loader.Loader{}

	out := l.Load(context.Background(), store, "DUC", gestmag.KindArticle, writeArchive(t, 3))

	require.True(t, out.Failed())
	require.Equal(t, 3, out.SourceCount)
	require.Zero(t, out.Inserted)
	require.Empty(t, store.chunks, "no insert after a failed clear")
}

func TestLoadChunking(t *testing.T) {
	tests := []struct {
		name      string
		rows      int
		chunkSize int
		chunks    []int
	}{
		{name: "exact multiple", rows: 6, chunkSize: 3, chunks: []int{3, 3}},
		{name: "remainder", rows: 7, chunkSize: 3, chunks: []int{3, 3, 1}},
		{name: "one row per chunk", rows: 3, chunkSize: 1, chunks: []int{1, 1, 1}},
		{name: "single chunk", rows: 4, chunkSize: 10, chunks: []int{4}},
		{name: "empty archive", rows: 0, chunkSize: 3, chunks: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			l := &loader.Loader{ChunkSize: tt.chunkSize}

			out := l.Load(context.Background(), store, "DUC", gestmag.KindArticle, writeArchive(t, tt.rows))

			require.False(t, out.Failed())
			require.Equal(t, tt.rows, out.SourceCount)
			require.Equal(t, tt.rows, out.Inserted)
			require.True(t, store.cleared)

			var sizes []int
			for _, c := range store.chunks {
				sizes = append(sizes, len(c))
			}
			require.Equal(t, tt.chunks, sizes)
		})
	}
}

// The destination ends up with the same documents regardless of chunk size.
func TestLoadChunkSizeEquivalence(t *testing.T) {
	path := writeArchive(t, 17)

	collect := func(chunkSize int) []any {
		store := &fakeStore{}
		l := &loader.Loader{ChunkSize: chunkSize}
		out := l.Load(context.Background(), store, "DUC", gestmag.KindArticle, path)
		require.False(t, out.Failed())

		var docs []any
		for _, c := range store.chunks {
			docs = append(docs, c...)
		}
		return docs
	}

	want := collect(1)
	for _, size := range []int{2, 5, 17, 100} {
		require.Equal(t, want, collect(size), "chunk size %d", size)
	}
}

func TestLoadDocumentsAreSanitized(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "article.csv")
	require.NoError(t, os.WriteFile(path, []byte("CODE,PRIX,CODE\nA-001,bad,dup\nA-002,5,x\n"), 0644))

	store := &fakeStore{}
	l := &loader.Loader{}
	out := l.Load(context.Background(), store, "DUC", gestmag.KindArticle, path)

	require.False(t, out.Failed())
	require.Len(t, store.chunks, 1)
	require.Equal(t, []any{
		bson.D{
			{Key: "CODE", Value: "A-001"},
			{Key: "PRIX", Value: float64(0)},
		},
		bson.D{
			{Key: "CODE", Value: "A-002"},
			{Key: "PRIX", Value: float64(5)},
		},
	}, store.chunks[0])
}

func TestLoadPartialInsert(t *testing.T) {
	store := &fakeStore{
		insertFn: func(call int, docs []any) (int, error) {
			return len(docs) - 2, errors.New("duplicate key")
		},
	}
	l := &loader.Loader{ChunkSize: 10}

	out := l.Load(context.Background(), store, "DUC", gestmag.KindArticle, writeArchive(t, 5))

	require.True(t, out.Failed())
	require.Equal(t, 5, out.SourceCount)
	require.Equal(t, 3, out.Inserted)
	require.Len(t, out.Errors, 1)
	require.Equal(t, 1, store.insertCall, "partial failures are never retried")
}

func TestLoadRetrySkip(t *testing.T) {
	store := &fakeStore{
		insertFn: func(call int, docs []any) (int, error) {
			return 0, errors.New("write concern")
		},
	}
	l := &loader.Loader{
		ChunkSize: 2,
		Retry:     loader.RetryPolicy{Mode: loader.RetrySkip, Attempts: 3},
	}

	out := l.Load(context.Background(), store, "DUC", gestmag.KindArticle, writeArchive(t, 4))

	require.Zero(t, out.Inserted)
	require.Equal(t, 2, store.insertCall, "skip mode attempts each chunk once")
	require.Len(t, out.Errors, 2)
}

func TestLoadRetryChunk(t *testing.T) {
	t.Run("recovers", func(t *testing.T) {
		store := &fakeStore{
			insertFn: func(call int, docs []any) (int, error) {
				if call == 1 {
					return 0, errors.New("transient")
				}
				return len(docs), nil
			},
		}
		l := &loader.Loader{
			ChunkSize: 10,
			Retry:     loader.RetryPolicy{Mode: loader.RetryChunk, Attempts: 3},
		}

		out := l.Load(context.Background(), store, "DUC", gestmag.KindArticle, writeArchive(t, 4))

		require.False(t, out.Failed())
		require.Equal(t, 4, out.Inserted)
		require.Equal(t, 2, store.insertCall)
	})

	t.Run("exhausts attempts", func(t *testing.T) {
		store := &fakeStore{
			insertFn: func(call int, docs []any) (int, error) {
				return 0, errors.New("down")
			},
		}
		l := &loader.Loader{
			ChunkSize: 10,
			Retry:     loader.RetryPolicy{Mode: loader.RetryChunk, Attempts: 3},
		}

		out := l.Load(context.Background(), store, "DUC", gestmag.KindArticle, writeArchive(t, 4))

		require.True(t, out.Failed())
		require.Zero(t, out.Inserted)
		require.Equal(t, 3, store.insertCall)
		require.Len(t, out.Errors, 1)
	})
}

func TestOutcomeFailed(t *testing.T) {
	require.False(t, loader.Outcome{SourceCount: 5, Inserted: 5}.Failed())
	require.True(t, loader.Outcome{SourceCount: 5, Inserted: 4}.Failed())
	require.True(t, loader.Outcome{Errors: []string{"x"}}.Failed())
	require.False(t, loader.Outcome{}.Failed())
}

package migrate_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/binder"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/gestmag"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/loader"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/migrate"
)

type fakeStore struct {
	mu       sync.Mutex
	cleared  int
	inserted int
}

func (s *fakeStore) Clear(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared++
	return 0, nil
}

func (s *fakeStore) Insert(ctx context.Context, docs []any) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserted += len(docs)
	return len(docs), nil
}

// fixture builds a source tree and a bindings directory. Every site gets a
// binding for each kind in kinds; rows maps "SITE/kind" to the number of CSV
// rows written (absent pairs get no archive file).
type fixture struct {
	sourceRoot string
	registry   *binder.Registry
	stores     map[string]*fakeStore
	mu         sync.Mutex
}

func newFixture(t *testing.T, sites []string, kinds []gestmag.Kind, rows map[string]int) *fixture {
	t.Helper()

	root := t.TempDir()
	bindings := t.TempDir()

	for _, site := range sites {
		require.NoError(t, os.MkdirAll(filepath.Join(root, site), 0755))
		for _, kind := range kinds {
			desc := fmt.Sprintf(`{"collection": %q}`, site+"_"+kind.String())
			name := fmt.Sprintf("%s_%s.json", site, kind)
			require.NoError(t, os.WriteFile(filepath.Join(bindings, name), []byte(desc), 0644))

			n, ok := rows[site+"/"+kind.String()]
			if !ok {
				continue
			}
			file := kind.ArchiveFile()
			csvName := file[:len(file)-4] + ".csv"
			content := "CODE\n"
			for i := 0; i < n; i++ {
				content += fmt.Sprintf("R-%03d\n", i)
			}
			require.NoError(t, os.WriteFile(filepath.Join(root, site, csvName), []byte(content), 0644))
		}
	}

	registry, err := binder.Load(bindings, nil)
	require.NoError(t, err)

	return &fixture{
		sourceRoot: root,
		registry:   registry,
		stores:     make(map[string]*fakeStore),
	}
}

func (f *fixture) storeFor(collection string) loader.Store {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stores[collection]
	if !ok {
		s = &fakeStore{}
		f.stores[collection] = s
	}
	return s
}

func (f *fixture) runner() *migrate.Runner {
	return &migrate.Runner{
		Registry:   f.registry,
		Stores:     f.storeFor,
		Loader:     &loader.Loader{ChunkSize: 2},
		SourceRoot: f.sourceRoot,
	}
}

func TestRunLoadsEveryBoundPair(t *testing.T) {
	kinds := []gestmag.Kind{gestmag.KindArticle, gestmag.KindCustomer}
	f := newFixture(t, []string{"DUC", "KONE"}, kinds, map[string]int{
		"DUC/article":   5,
		"DUC/customer":  3,
		"KONE/article":  2,
		"KONE/customer": 1,
	})

	summary := f.runner().Run(context.Background())

	// Unbound kinds are recorded as skips, bound pairs as outcomes.
	require.Len(t, summary.Outcomes, 4)
	require.Len(t, summary.Skips, 2*len(gestmag.Kinds())-4)
	require.Equal(t, int64(11), summary.TotalSource())
	require.Equal(t, int64(11), summary.TotalInserted())
	require.Empty(t, summary.Failures())

	require.Equal(t, 5, f.stores["DUC_article"].inserted)
	require.Equal(t, 1, f.stores["DUC_article"].cleared)
	require.Equal(t, 1, f.stores["KONE_customer"].inserted)
}

func TestRunOutcomeOrderIsDeterministic(t *testing.T) {
	kinds := []gestmag.Kind{gestmag.KindArticle, gestmag.KindCustomer}
	f := newFixture(t, []string{"AVB", "DUC"}, kinds, map[string]int{
		"AVB/article": 1, "AVB/customer": 1,
		"DUC/article": 1, "DUC/customer": 1,
	})

	r := f.runner()
	r.Workers = 4
	summary := r.Run(context.Background())

	var got []string
	for _, out := range summary.Outcomes {
		got = append(got, out.Site+"/"+out.Kind.String())
	}
	require.Equal(t, []string{
		"AVB/article", "AVB/customer",
		"DUC/article", "DUC/customer",
	}, got, "outcome order follows schedule order regardless of workers")
}

func TestRunMissingSiteDirectory(t *testing.T) {
	f := newFixture(t, []string{"DUC"}, []gestmag.Kind{gestmag.KindArticle}, map[string]int{
		"DUC/article": 2,
	})

	r := f.runner()
	r.Sites = []string{"GHOST", "DUC"}
	summary := r.Run(context.Background())

	// The missing site is one skip; DUC still runs in full.
	require.Len(t, summary.Outcomes, 1)
	require.Equal(t, int64(2), summary.TotalInserted())

	var ghostSkips int
	for _, s := range summary.Skips {
		if s.Site == "GHOST" {
			ghostSkips++
			require.Empty(t, s.Kind)
		}
	}
	require.Equal(t, 1, ghostSkips, "a missing site directory is a single site-level skip")
}

func TestRunMissingArchive(t *testing.T) {
	// Binding exists, site directory exists, archive file does not.
	f := newFixture(t, []string{"DUC"}, []gestmag.Kind{gestmag.KindArticle, gestmag.KindCustomer}, map[string]int{
		"DUC/customer": 3,
	})

	summary := f.runner().Run(context.Background())

	require.Len(t, summary.Failures(), 1)
	require.Equal(t, int64(3), summary.TotalInserted())

	var missing *loader.Outcome
	for i := range summary.Outcomes {
		if summary.Outcomes[i].Kind == gestmag.KindArticle {
			missing = &summary.Outcomes[i]
		}
	}
	require.NotNil(t, missing)
	require.True(t, missing.MissingArchive)
	require.Zero(t, f.stores["DUC_article"].cleared, "destination untouched when the archive is missing")
}

func TestRunSiteFilter(t *testing.T) {
	f := newFixture(t, []string{"AVB", "DUC"}, []gestmag.Kind{gestmag.KindArticle}, map[string]int{
		"AVB/article": 1,
		"DUC/article": 1,
	})

	r := f.runner()
	r.Sites = []string{"DUC"}
	summary := r.Run(context.Background())

	require.Equal(t, int64(1), summary.TotalInserted())
	require.Nil(t, f.stores["AVB_article"])
}

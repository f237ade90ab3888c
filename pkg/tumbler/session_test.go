package tumbler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/tumbler-go/pkg/tumbler/generator"
	"github.com/ukaji3/tumbler-go/pkg/tumbler/history"
	"github.com/ukaji3/tumbler-go/pkg/tumbler/models"
	"github.com/ukaji3/tumbler-go/pkg/tumbler/rng"
)

const (
	colorsCSV  = "Color,Animal,Verb\nred,cat,runs\ngreen,dog,sleeps\nblue,fox,\n,owl,"
	colorsSrc  = "https://example.com/colors.csv"
	singleSrc  = "https://example.com/single.csv"
	missingSrc = "https://example.com/missing.csv"
)

type fakeFetcher struct {
	mu      sync.Mutex
	sources map[string]string
	calls   map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		sources: map[string]string{
			colorsSrc: colorsCSV,
			singleSrc: "word1\nword2\nword3",
		},
		calls: map[string]int{},
	}
}

func (f *fakeFetcher) Fetch(_ context.Context, source string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[source]++
	body, ok := f.sources[source]
	if !ok {
		return nil, &NetworkError{Source: source, StatusCode: 404, Err: errors.New("not found")}
	}
	return []byte(body), nil
}

func (f *fakeFetcher) callCount(source string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[source]
}

type recordingRenderer struct {
	mu      sync.Mutex
	frames  []models.Frame
	loading []bool
	sources []string
	errors  []string
	cleared int
}

func (r *recordingRenderer) Render(frame models.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, frame)
}

func (r *recordingRenderer) SetLoading(loading bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = append(r.loading, loading)
}

func (r *recordingRenderer) SetSourceValue(source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, source)
}

func (r *recordingRenderer) ShowError(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, message)
}

func (r *recordingRenderer) ClearError() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleared++
}

var colorsPools = [][]string{
	{"red", "green", "blue"},
	{"cat", "dog", "fox", "owl"},
	{"runs", "sleeps"},
}

func TestLoadSource(t *testing.T) {
	ctx := context.Background()
	fetcher := newFakeFetcher()
	renderer := &recordingRenderer{}
	s := NewSession(fetcher, DefaultOptions(), WithRenderer(renderer))

	require.NoError(t, s.LoadSource(ctx, colorsSrc))
	assert.Equal(t, colorsSrc, s.SourceID())

	cols := s.Columns()
	assert.Equal(t, []string{"Color", "Animal", "Verb"}, cols.Labels)
	assert.Equal(t, colorsPools, cols.Pools)

	assert.Equal(t, []bool{true, false}, renderer.loading)
	assert.Equal(t, []string{colorsSrc}, renderer.sources)
	assert.Equal(t, 1, renderer.cleared)
}

func TestLoadSourceSameSourceSkipsFetch(t *testing.T) {
	ctx := context.Background()
	fetcher := newFakeFetcher()
	s := NewSession(fetcher, DefaultOptions())

	require.NoError(t, s.LoadSource(ctx, colorsSrc))
	require.NoError(t, s.LoadSource(ctx, colorsSrc))
	assert.Equal(t, 1, fetcher.callCount(colorsSrc))

	require.NoError(t, s.LoadSource(ctx, singleSrc))
	require.NoError(t, s.LoadSource(ctx, colorsSrc))
	assert.Equal(t, 2, fetcher.callCount(colorsSrc))
}

func TestLoadSourceFailureLeavesState(t *testing.T) {
	ctx := context.Background()
	fetcher := newFakeFetcher()
	fetcher.sources["https://example.com/empty.csv"] = "\n\n  \n"
	fetcher.sources["https://example.com/broken.csv"] = "a,b\n\"unterminated"
	renderer := &recordingRenderer{}
	s := NewSession(fetcher, DefaultOptions(), WithRenderer(renderer), WithSeedSource(rng.Sequence(42)))

	require.NoError(t, s.LoadSource(ctx, colorsSrc))
	words, err := s.Regenerate(ctx, false)
	require.NoError(t, err)

	assertUnchanged := func(t *testing.T) {
		t.Helper()
		assert.Equal(t, colorsSrc, s.SourceID())
		assert.Equal(t, colorsPools, s.Columns().Pools)
		seed, ok := s.Seed()
		assert.True(t, ok)
		assert.Equal(t, uint32(42), seed)
		assert.Equal(t, words, s.Words())
	}

	err = s.LoadSource(ctx, missingSrc)
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, 404, netErr.StatusCode)
	assert.Contains(t, err.Error(), "404")
	assertUnchanged(t)

	err = s.LoadSource(ctx, "https://example.com/empty.csv")
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.ErrorIs(t, err, ErrNoData)
	assertUnchanged(t)

	err = s.LoadSource(ctx, "https://example.com/broken.csv")
	require.ErrorAs(t, err, &parseErr)
	assertUnchanged(t)

	assert.Len(t, renderer.errors, 3)
	assert.Equal(t, 1, renderer.cleared)
}

func TestLoadSourceWrapsPlainFetchErrors(t *testing.T) {
	boom := errors.New("connection refused")
	s := NewSession(FetcherFunc(func(context.Context, string) ([]byte, error) {
		return nil, boom
	}), DefaultOptions())

	err := s.LoadSource(context.Background(), colorsSrc)
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, 0, netErr.StatusCode)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "", s.SourceID())
}

func TestEmptyColumnPolicies(t *testing.T) {
	ctx := context.Background()
	src := "https://example.com/gaps.csv"
	fetcher := newFakeFetcher()
	fetcher.sources[src] = "a,b\n1,\n2, "

	t.Run("allow", func(t *testing.T) {
		s := NewSession(fetcher, DefaultOptions(), WithSeedSource(rng.Sequence(1)))
		require.NoError(t, s.LoadSource(ctx, src))
		assert.Equal(t, [][]string{{"1", "2"}, {}}, s.Columns().Pools)

		words, err := s.Regenerate(ctx, false)
		require.NoError(t, err)
		assert.Equal(t, []string{"2", ""}, words)
	})

	t.Run("reject", func(t *testing.T) {
		opts := DefaultOptions()
		opts.EmptyColumns = EmptyColumnsReject
		s := NewSession(fetcher, opts)

		err := s.LoadSource(ctx, src)
		var emptyErr *EmptyPoolError
		require.ErrorAs(t, err, &emptyErr)
		assert.Equal(t, 1, emptyErr.Column)
		assert.Equal(t, "b", emptyErr.Label)
		assert.Equal(t, "column 2 (b) has no words", err.Error())
		assert.Equal(t, "", s.SourceID())
	})
}

func TestHeaderModes(t *testing.T) {
	ctx := context.Background()

	s := NewSession(newFakeFetcher(), DefaultOptions())
	require.NoError(t, s.LoadSource(ctx, singleSrc))
	assert.Equal(t, []string{""}, s.Columns().Labels)
	assert.Equal(t, [][]string{{"word1", "word2", "word3"}}, s.Columns().Pools)

	opts := DefaultOptions()
	opts.HeaderMode = HeaderAlways
	s = NewSession(newFakeFetcher(), opts)
	require.NoError(t, s.LoadSource(ctx, singleSrc))
	assert.Equal(t, []string{"word1"}, s.Columns().Labels)
	assert.Equal(t, [][]string{{"word2", "word3"}}, s.Columns().Pools)
}

func TestRegenerate(t *testing.T) {
	ctx := context.Background()
	s := NewSession(newFakeFetcher(), DefaultOptions(), WithSeedSource(rng.Sequence(42, 42, 9)))

	_, err := s.Regenerate(ctx, false)
	assert.ErrorIs(t, err, ErrNoSource)

	require.NoError(t, s.LoadSource(ctx, colorsSrc))

	// No fixed seed yet: one is drawn.
	words, err := s.Regenerate(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"green", "dog", "sleeps"}, words)
	seed, ok := s.Seed()
	require.True(t, ok)
	assert.Equal(t, uint32(42), seed)

	// Fixed seed is reused.
	again, err := s.Regenerate(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, words, again)

	// Forcing redraws past a colliding seed.
	forced, err := s.Regenerate(ctx, true)
	require.NoError(t, err)
	seed, _ = s.Seed()
	assert.Equal(t, uint32(9), seed)
	assert.Equal(t, generator.Generate(colorsPools, 9), forced)
	assert.Equal(t, "seed=9", s.Locator().Encode(DefaultSourceURL)[:6])
}

func TestLocatorRoundTrip(t *testing.T) {
	ctx := context.Background()
	fetcher := newFakeFetcher()
	s := NewSession(fetcher, DefaultOptions(), WithSeedSource(rng.Sequence(123456)))
	s.ApplyLocator(Locator{Display: Display{HideLabels: true}})

	require.NoError(t, s.LoadSource(ctx, colorsSrc))
	words, err := s.Regenerate(ctx, true)
	require.NoError(t, err)

	query := s.Locator().Encode(DefaultSourceURL)
	loc, err := ParseLocatorQuery("?" + query)
	require.NoError(t, err)
	assert.Equal(t, colorsSrc, loc.Sheet)
	assert.True(t, loc.HideLabels)

	restored := NewSession(fetcher, DefaultOptions(), WithSeedSource(rng.Sequence(1)))
	restored.ApplyLocator(loc)
	require.NoError(t, restored.LoadSource(ctx, loc.Source(DefaultSourceURL)))
	again, err := restored.Regenerate(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, words, again)
	assert.True(t, restored.Display().HideLabels)
}

func TestHistoryReplay(t *testing.T) {
	ctx := context.Background()
	mem := history.NewMemory()
	s := NewSession(newFakeFetcher(), DefaultOptions(),
		WithHistory(mem), WithSeedSource(rng.Sequence(11, 22)))

	require.NoError(t, s.LoadSource(ctx, colorsSrc))
	first, err := s.Regenerate(ctx, false)
	require.NoError(t, err)
	second, err := s.Regenerate(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, mem.Len())
	assert.NotEmpty(t, s.Result().SnapshotID)

	entry, ok := mem.Back()
	require.True(t, ok)
	require.NotNil(t, entry.Seed)
	assert.Equal(t, uint32(11), *entry.Seed)

	// A session that cannot fetch anything still replays the entry.
	offline := FetcherFunc(func(context.Context, string) ([]byte, error) {
		t.Fatal("replay must not fetch")
		return nil, nil
	})
	renderer := &recordingRenderer{}
	replayed := NewSession(offline, DefaultOptions(), WithRenderer(renderer))
	words, err := replayed.RestoreHistoryEntry(entry)
	require.NoError(t, err)
	assert.Equal(t, first, words)
	assert.Equal(t, colorsSrc, replayed.SourceID())
	require.Len(t, renderer.frames, 1)
	assert.Equal(t, uint32(11), renderer.frames[0].Seed)

	entry, _ = mem.Forward()
	words, err = replayed.RestoreHistoryEntry(entry)
	require.NoError(t, err)
	assert.Equal(t, second, words)

	// Snapshots never alias live state.
	entry.Pools[0][0] = "mutated"
	assert.Equal(t, "red", replayed.Columns().Pools[0][0])
}

func TestRestoreHistoryEntryWithoutSeed(t *testing.T) {
	s := NewSession(newFakeFetcher(), DefaultOptions())
	words, err := s.RestoreHistoryEntry(models.Snapshot{
		Version:  models.SnapshotVersion,
		SourceID: colorsSrc,
		Labels:   []string{"a"},
		Pools:    [][]string{{"x"}},
	})
	require.NoError(t, err)
	assert.Empty(t, words)
	_, ok := s.Seed()
	assert.False(t, ok)

	_, err = s.RestoreHistoryEntry(models.Snapshot{Version: 99})
	assert.ErrorIs(t, err, ErrUnsupportedSnapshot)
}

func TestInit(t *testing.T) {
	ctx := context.Background()

	t.Run("fixed seed", func(t *testing.T) {
		mem := history.NewMemory()
		s := NewSession(newFakeFetcher(), DefaultOptions(), WithHistory(mem))
		seed := uint32(42)

		words, err := s.Init(ctx, Locator{Seed: &seed, Sheet: colorsSrc})
		require.NoError(t, err)
		assert.Equal(t, []string{"green", "dog", "sleeps"}, words)
		assert.Equal(t, 2, mem.Len())
	})

	t.Run("no seed", func(t *testing.T) {
		mem := history.NewMemory()
		s := NewSession(newFakeFetcher(), DefaultOptions(), WithHistory(mem))

		words, err := s.Init(ctx, Locator{Sheet: colorsSrc})
		require.NoError(t, err)
		assert.Nil(t, words)
		assert.Equal(t, 1, mem.Len())
		entry, _ := mem.Current()
		assert.Nil(t, entry.Seed)
		assert.Equal(t, colorsPools, entry.Pools)
	})

	t.Run("random overrides seed", func(t *testing.T) {
		s := NewSession(newFakeFetcher(), DefaultOptions(), WithSeedSource(rng.Sequence(9)))
		seed := uint32(42)

		words, err := s.Init(ctx, Locator{Seed: &seed, Random: true, Sheet: colorsSrc})
		require.NoError(t, err)
		assert.Equal(t, generator.Generate(colorsPools, 9), words)
	})

	t.Run("default source", func(t *testing.T) {
		fetcher := newFakeFetcher()
		opts := DefaultOptions()
		opts.DefaultSource = singleSrc
		s := NewSession(fetcher, opts)

		_, err := s.Init(ctx, Locator{})
		require.NoError(t, err)
		assert.Equal(t, singleSrc, s.SourceID())
		assert.NotContains(t, s.Locator().Encode(singleSrc), "sheet=")
	})

	t.Run("load failure", func(t *testing.T) {
		renderer := &recordingRenderer{}
		s := NewSession(newFakeFetcher(), DefaultOptions(), WithRenderer(renderer))

		_, err := s.Init(ctx, Locator{Sheet: missingSrc})
		require.Error(t, err)
		assert.Equal(t, []string{missingSrc}, renderer.sources)
		assert.Len(t, renderer.errors, 1)
		_, ok := s.Seed()
		assert.False(t, ok)
		assert.Equal(t, Locator{}, s.Locator())
	})

	t.Run("load failure keeps previous locator", func(t *testing.T) {
		s := NewSession(newFakeFetcher(), DefaultOptions())
		seed := uint32(42)
		_, err := s.Init(ctx, Locator{Seed: &seed, Sheet: colorsSrc})
		require.NoError(t, err)
		before := s.Locator()

		other := uint32(7)
		_, err = s.Init(ctx, Locator{
			Seed:    &other,
			Sheet:   missingSrc,
			Display: Display{HideLabels: true},
		})
		require.Error(t, err)

		got, ok := s.Seed()
		assert.True(t, ok)
		assert.Equal(t, uint32(42), got)
		assert.Equal(t, before, s.Locator())
		assert.Equal(t, colorsSrc, s.Locator().Sheet)
		assert.False(t, s.Display().HideLabels)
		assert.Equal(t, []string{"green", "dog", "sleeps"}, s.Words())
	})
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	mem := history.NewMemory()
	s := NewSession(newFakeFetcher(), DefaultOptions(), WithHistory(mem), WithSeedSource(rng.Sequence(42)))

	words, err := s.Load(ctx, colorsSrc)
	require.NoError(t, err)
	assert.Equal(t, []string{"green", "dog", "sleeps"}, words)
	require.Equal(t, 2, mem.Len())

	generated, _ := mem.Current()
	require.NotNil(t, generated.Seed)
	seedless, _ := mem.Back()
	assert.Nil(t, seedless.Seed)
	assert.Equal(t, colorsSrc, seedless.SourceID)

	loc := s.Locator()
	assert.Equal(t, colorsSrc, loc.Sheet)
}

func TestConcurrentLoadRejected(t *testing.T) {
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})
	fetcher := FetcherFunc(func(_ context.Context, source string) ([]byte, error) {
		if source == colorsSrc {
			close(started)
			<-release
		}
		return []byte(colorsCSV), nil
	})
	s := NewSession(fetcher, DefaultOptions())

	done := make(chan error, 1)
	go func() { done <- s.LoadSource(ctx, colorsSrc) }()
	<-started

	assert.ErrorIs(t, s.LoadSource(ctx, singleSrc), ErrLoadInFlight)
	_, err := s.Regenerate(ctx, true)
	assert.ErrorIs(t, err, ErrLoadInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, colorsSrc, s.SourceID())
	require.NoError(t, s.LoadSource(ctx, singleSrc))
}

func TestFrameLabels(t *testing.T) {
	ctx := context.Background()
	s := NewSession(newFakeFetcher(), DefaultOptions(), WithSeedSource(rng.Sequence(42)))
	require.NoError(t, s.LoadSource(ctx, colorsSrc))
	_, err := s.Regenerate(ctx, false)
	require.NoError(t, err)

	frame := s.Frame()
	require.Len(t, frame.Slots, 3)
	assert.Equal(t, "Color", frame.Slots[0].Label)
	assert.Equal(t, "green", frame.Slots[0].Word)
	assert.Equal(t, 2*generator.DefaultRevealInterval, frame.Slots[2].Delay)

	s.ApplyLocator(Locator{Display: Display{HideLabels: true}, Seed: &frame.Seed})
	for _, slot := range s.Frame().Slots {
		assert.Equal(t, "", slot.Label)
	}
}

func TestResultAndEmbed(t *testing.T) {
	ctx := context.Background()
	s := NewSession(newFakeFetcher(), DefaultOptions(), WithSeedSource(rng.Sequence(42)))
	_, err := s.Load(ctx, colorsSrc)
	require.NoError(t, err)

	result := s.Result()
	assert.Equal(t, colorsSrc, result.Source)
	assert.Equal(t, uint32(42), result.Seed)
	assert.Equal(t, []string{"green", "dog", "sleeps"}, result.Words)
	assert.Equal(t, "seed=42&sheet=https%3A%2F%2Fexample.com%2Fcolors.csv", result.Locator)
	assert.Empty(t, result.SnapshotID)

	embed := s.EmbedURL("https://tumbler.test/", EmbedOptions{UseCurrentSource: true})
	assert.Equal(t, "https://tumbler.test/?seed=42&sheet=https%3A%2F%2Fexample.com%2Fcolors.csv", embed)
}

package tumbler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ukaji3/tumbler-go/pkg/tumbler/generator"
	"github.com/ukaji3/tumbler-go/pkg/tumbler/models"
	"github.com/ukaji3/tumbler-go/pkg/tumbler/parser"
	"github.com/ukaji3/tumbler-go/pkg/tumbler/rng"
)

// maxSeedDraws bounds redraws when a forced seed collides with the current one.
const maxSeedDraws = 8

// History records session snapshots. Push adds an entry, Replace overwrites
// the current one.
type History interface {
	Push(ctx context.Context, snap models.Snapshot) error
	Replace(ctx context.Context, snap models.Snapshot) error
}

// Session holds the loaded source, its columns, and the current seed.
// Loads either replace all of it or none of it.
type Session struct {
	mu sync.Mutex

	fetcher  Fetcher
	renderer Renderer
	history  History
	seeds    rng.SeedSource
	logger   *zap.Logger
	opts     Options
	now      func() time.Time

	sourceID string
	cols     models.Columns
	seed     uint32
	hasSeed  bool
	words    []string
	sheet    string
	display  Display
	loading  string
	lastID   string
}

// Option configures a Session.
type Option func(*Session)

// WithRenderer sets the renderer. Defaults to NopRenderer.
func WithRenderer(r Renderer) Option {
	return func(s *Session) { s.renderer = r }
}

// WithHistory sets where snapshots are recorded. Defaults to none.
func WithHistory(h History) Option {
	return func(s *Session) { s.history = h }
}

// WithSeedSource sets where new seeds come from. Defaults to rng.RandomSeeds.
func WithSeedSource(src rng.SeedSource) Option {
	return func(s *Session) { s.seeds = src }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// NewSession creates an empty session that fetches sources with fetcher.
func NewSession(fetcher Fetcher, opts Options, setters ...Option) *Session {
	s := &Session{
		fetcher:  fetcher,
		renderer: NopRenderer{},
		seeds:    rng.RandomSeeds,
		logger:   zap.NewNop(),
		opts:     opts,
		now:      time.Now,
	}
	for _, set := range setters {
		set(s)
	}
	return s
}

// SourceID returns the loaded source, or "" before the first load.
func (s *Session) SourceID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sourceID
}

// Columns returns a copy of the loaded labels and pools.
func (s *Session) Columns() models.Columns {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cols.Clone()
}

// Seed returns the fixed seed and whether one is fixed.
func (s *Session) Seed() (uint32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seed, s.hasSeed
}

// Words returns the last drawn words.
func (s *Session) Words() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.words...)
}

// Display returns the visibility flags from the last applied locator.
func (s *Session) Display() Display {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.display
}

// Options returns the session options.
func (s *Session) Options() Options {
	return s.opts
}

// LoadSource fetches, parses and installs source. Loading the source that
// is already installed succeeds without fetching. While a load is in
// flight every other load fails with ErrLoadInFlight. On failure the
// session is left exactly as it was.
func (s *Session) LoadSource(ctx context.Context, source string) error {
	s.mu.Lock()
	if s.sourceID != "" && source == s.sourceID {
		s.mu.Unlock()
		s.logger.Debug("Source already loaded", zap.String("source", source))
		return nil
	}
	if s.loading != "" {
		inFlight := s.loading
		s.mu.Unlock()
		s.logger.Warn("Load rejected", zap.String("source", source), zap.String("in_flight", inFlight))
		return ErrLoadInFlight
	}
	s.loading = source
	s.mu.Unlock()

	s.logger.Info("Loading source", zap.String("source", source))
	s.renderer.SetLoading(true)
	cols, err := s.fetchColumns(ctx, source)
	s.renderer.SetLoading(false)

	s.mu.Lock()
	s.loading = ""
	if err == nil {
		s.sourceID = source
		s.sheet = source
		s.cols = cols
		s.words = nil
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Load failed", zap.String("source", source), zap.Error(err))
		s.renderer.ShowError(err.Error())
		return err
	}

	s.logger.Info("Source loaded", zap.String("source", source), zap.Int("columns", cols.Len()))
	s.renderer.ClearError()
	s.renderer.SetSourceValue(source)
	return nil
}

func (s *Session) fetchColumns(ctx context.Context, source string) (models.Columns, error) {
	raw, err := s.fetcher.Fetch(ctx, source)
	if err != nil {
		var netErr *NetworkError
		if !errors.As(err, &netErr) {
			err = &NetworkError{Source: source, Err: err}
		}
		return models.Columns{}, err
	}

	table, err := parser.Parse(raw, s.opts.TableParams())
	if err != nil {
		return models.Columns{}, &ParseError{Source: source, Err: err}
	}

	cols := parser.BuildColumns(table)
	if s.opts.ShouldRejectEmptyColumns() {
		if i := parser.FirstEmptyPool(cols); i >= 0 {
			return models.Columns{}, &EmptyPoolError{Column: i, Label: cols.Labels[i]}
		}
	}
	return cols, nil
}

// Regenerate draws a word per column. A new seed is picked when
// forceNewSeed is set or no seed is fixed; otherwise the fixed seed is
// reused. The seed becomes fixed either way and a snapshot is pushed.
func (s *Session) Regenerate(ctx context.Context, forceNewSeed bool) ([]string, error) {
	s.mu.Lock()
	if s.loading != "" {
		s.mu.Unlock()
		return nil, ErrLoadInFlight
	}
	if s.sourceID == "" {
		s.mu.Unlock()
		return nil, ErrNoSource
	}

	seed := s.seed
	if forceNewSeed || !s.hasSeed {
		seed = s.drawSeedLocked(forceNewSeed)
	}
	s.seed, s.hasSeed = seed, true
	s.words = generator.Generate(s.cols.Pools, seed)
	words := append([]string(nil), s.words...)
	snap := s.snapshotLocked(true)
	if s.history != nil {
		s.lastID = snap.ID
	}
	frame := s.frameLocked()
	s.mu.Unlock()

	s.logger.Debug("Generated combination",
		zap.Uint32("seed", seed),
		zap.Bool("forced", forceNewSeed),
		zap.Strings("words", words))
	s.record(ctx, snap, false)
	s.renderer.Render(frame)
	return words, nil
}

func (s *Session) drawSeedLocked(mustDiffer bool) uint32 {
	var seed uint32
	for i := 0; i < maxSeedDraws; i++ {
		seed = s.seeds.Seed()
		if !mustDiffer || !s.hasSeed || seed != s.seed {
			break
		}
	}
	return seed
}

// Locator returns the shareable locator for the current state.
func (s *Session) Locator() Locator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locatorLocked()
}

func (s *Session) locatorLocked() Locator {
	loc := Locator{Sheet: s.sheet, Display: s.display}
	if s.hasSeed {
		seed := s.seed
		loc.Seed = &seed
	}
	return loc
}

// ApplyLocator installs the seed, sheet override and display flags of loc.
// A locator without a seed clears the fixed seed. The source itself is not
// loaded; call LoadSource with loc.Source.
func (s *Session) ApplyLocator(loc Locator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocatorLocked(loc)
}

func (s *Session) applyLocatorLocked(loc Locator) {
	s.display = loc.Display
	s.sheet = loc.Sheet
	s.hasSeed = loc.Seed != nil
	if loc.Seed != nil {
		s.seed = *loc.Seed
	}
}

// Init performs a first page load: load the source of loc, apply loc,
// replace the current history entry, then generate when loc fixes a seed or
// asks for a random one. It returns nil words when nothing was generated.
// A failed load leaves the session untouched, loc included.
func (s *Session) Init(ctx context.Context, loc Locator) ([]string, error) {
	source := loc.Source(s.opts.Source())
	s.renderer.SetSourceValue(source)

	if err := s.LoadSource(ctx, source); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.applyLocatorLocked(loc)
	s.sheet = source
	s.mu.Unlock()
	s.record(ctx, s.HistoryEntry(), true)

	if loc.Random || loc.Seed != nil {
		return s.Regenerate(ctx, loc.Random)
	}
	return nil, nil
}

// Load handles an explicit source change: load it, push a seedless entry,
// then generate with the fixed seed if there is one.
func (s *Session) Load(ctx context.Context, source string) ([]string, error) {
	if err := s.LoadSource(ctx, source); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.sheet = source
	snap := s.snapshotLocked(false)
	s.mu.Unlock()
	s.record(ctx, snap, false)

	return s.Regenerate(ctx, false)
}

// HistoryEntry returns a snapshot of the current state.
func (s *Session) HistoryEntry() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(true)
}

func (s *Session) snapshotLocked(withSeed bool) models.Snapshot {
	cols := s.cols.Clone()
	snap := models.Snapshot{
		ID:        uuid.NewString(),
		Version:   models.SnapshotVersion,
		SourceID:  s.sourceID,
		Labels:    cols.Labels,
		Pools:     cols.Pools,
		CreatedAt: s.now().UTC(),
	}
	if withSeed && s.hasSeed {
		seed := s.seed
		snap.Seed = &seed
	}
	return snap
}

// RestoreHistoryEntry reinstates a snapshot without fetching or parsing.
// When the snapshot carries a seed the words are drawn again, producing
// exactly what was shown when the snapshot was taken.
func (s *Session) RestoreHistoryEntry(snap models.Snapshot) ([]string, error) {
	if snap.Version != models.SnapshotVersion {
		return nil, ErrUnsupportedSnapshot
	}

	s.mu.Lock()
	if s.loading != "" {
		s.mu.Unlock()
		return nil, ErrLoadInFlight
	}
	s.sourceID = snap.SourceID
	s.sheet = snap.SourceID
	s.cols = snap.Columns().Clone()
	s.words = nil
	s.hasSeed = snap.Seed != nil
	if snap.Seed != nil {
		s.seed = *snap.Seed
		s.words = generator.Generate(s.cols.Pools, s.seed)
	}
	words := append([]string(nil), s.words...)
	frame := s.frameLocked()
	hasSeed := s.hasSeed
	s.mu.Unlock()

	s.logger.Debug("Restored history entry", zap.String("id", snap.ID), zap.String("source", snap.SourceID))
	s.renderer.SetSourceValue(snap.SourceID)
	if hasSeed {
		s.renderer.Render(frame)
	}
	return words, nil
}

// Frame returns the current slots as a renderer would draw them.
func (s *Session) Frame() models.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameLocked()
}

func (s *Session) frameLocked() models.Frame {
	labels := make([]string, len(s.words))
	if !s.display.HideLabels {
		copy(labels, s.cols.Labels)
	}
	return models.Frame{
		Source: s.sourceID,
		Seed:   s.seed,
		Slots:  generator.Schedule(labels, s.words, s.opts.Interval()),
	}
}

// Result returns the serializable outcome of the last generation.
func (s *Session) Result() models.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.Result{
		Source:     s.sourceID,
		Seed:       s.seed,
		Labels:     append([]string(nil), s.cols.Labels...),
		Words:      append([]string(nil), s.words...),
		Locator:    s.locatorLocked().Encode(s.opts.Source()),
		SnapshotID: s.lastID,
	}
}

// EmbedURL builds an embeddable URL from the current locator.
func (s *Session) EmbedURL(base string, opts EmbedOptions) string {
	return EmbedURL(base, s.Locator(), opts, s.opts.Source())
}

func (s *Session) record(ctx context.Context, snap models.Snapshot, replace bool) {
	if s.history == nil {
		return
	}
	var err error
	if replace {
		err = s.history.Replace(ctx, snap)
	} else {
		err = s.history.Push(ctx, snap)
	}
	if err != nil {
		s.logger.Warn("Failed to record history entry", zap.String("id", snap.ID), zap.Error(err))
	}
}

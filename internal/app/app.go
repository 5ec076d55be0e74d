// Package app wires together all adapters and domain logic.
// It provides lifecycle management for the adsaver daemon: create, start, stop.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/corey/adsaver/internal/adapters/ahocorasick"
	"github.com/corey/adsaver/internal/adapters/bbolt"
	"github.com/corey/adsaver/internal/adapters/socket"
	"github.com/corey/adsaver/internal/adapters/web"
	"github.com/corey/adsaver/internal/config"
	"github.com/corey/adsaver/internal/domain/combo"
	"github.com/corey/adsaver/internal/domain/status"
	"github.com/corey/adsaver/internal/ports"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// App is the top-level container wiring all components together.
// It implements socket.Service, so the socket daemon, the HTTP API and
// direct CLI use all share one code path.
type App struct {
	ProjectRoot string
	Paths       *Paths
	Settings    *config.Config

	Store     ports.KeywordStore
	Server    *socket.Server
	WebServer *web.Server
	Log       *zap.Logger

	session     Session
	mu          sync.Mutex // guards generations and status writes
	generations uint64
	closeStore  func() error
	started     time.Time
}

// Config holds initialization parameters for the App.
type Config struct {
	ProjectRoot string
	Settings    *config.Config // nil = config.Default()
	DBPath      string         // path to bbolt file (default: .adsaver/adsaver.db)
	Logger      *zap.Logger    // nil = no logging
}

// New creates an App with all dependencies wired. Does not start services.
func New(cfg Config) (*App, error) {
	if cfg.ProjectRoot == "" {
		return nil, fmt.Errorf("project root required")
	}
	if cfg.Settings == nil {
		cfg.Settings = config.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	paths := NewPaths(cfg.ProjectRoot)
	if cfg.DBPath == "" {
		cfg.DBPath = paths.DB
	}
	if err := paths.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("create %s: %w", paths.Root, err)
	}

	store, err := bbolt.NewStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	a := &App{
		ProjectRoot: cfg.ProjectRoot,
		Paths:       paths,
		Settings:    cfg.Settings,
		Store:       store,
		Log:         cfg.Logger,
		closeStore:  store.Close,
		started:     time.Now(),
	}
	a.session.Set(nil, cfg.Settings.SortKey())

	a.Server = socket.NewServer(a, socket.SocketPath(cfg.ProjectRoot), cfg.Logger)
	a.WebServer = web.NewServer(a, paths.PortFile, cfg.Logger)
	return a, nil
}

// Start begins the daemon (socket server + HTTP server).
func (a *App) Start() error {
	a.started = time.Now()
	if err := a.Server.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	// HTTP is non-fatal if the port is taken.
	port := a.Settings.Server.HTTPPort
	if port == 0 {
		port = web.DefaultPort(a.ProjectRoot)
	}
	if err := a.WebServer.Start(a.Settings.Server.HTTPAddr, port); err != nil {
		a.Log.Warn("http server unavailable", zap.Error(err))
	}
	return nil
}

// Run starts the daemon and blocks until ctx is cancelled or a client asks
// it to shut down, then stops everything.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(); err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case <-ctx.Done():
			a.Log.Info("signal received, stopping")
		case <-a.Server.ShutdownCh():
			a.Log.Info("shutdown requested, stopping")
		}
		return a.Stop()
	})
	return g.Wait()
}

// Stop shuts down all services and closes the store.
func (a *App) Stop() error {
	a.WebServer.Stop()
	a.Server.Stop()
	a.Paths.CleanEphemeral()
	return a.Close()
}

// Close releases the store. For CLI use without Start.
func (a *App) Close() error {
	if a.closeStore == nil {
		return nil
	}
	err := a.closeStore()
	a.closeStore = nil
	return err
}

// HTTPURL returns the web UI address once started.
func (a *App) HTTPURL() string {
	return a.WebServer.URL()
}

// Generate runs the engine on the request's columns. Config fields the
// request leaves out use the configured defaults; an empty sort uses the
// configured default order.
func (a *App) Generate(p socket.GenerateParams) (*socket.GenerateResult, error) {
	cfg := p.ResolveConfig(a.Settings.EngineConfig())
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrInvalid, err)
	}
	key, err := a.sortKey(p.Sort)
	if err != nil {
		return nil, err
	}

	cols := combo.ParseColumns(p.Columns[0], p.Columns[1], p.Columns[2])
	raw := combo.EstimateRaw(cols, cfg)
	warning := a.largeInputWarning(raw)

	start := time.Now()
	combos := combo.Combine(cols, cfg)
	keywords := combo.Format(combos, cfg.Options.UseComma, cfg.MatchTypes)
	keywords, excluded := ahocorasick.NewFilter(p.Exclude).Apply(keywords)
	elapsed := time.Since(start)

	view := a.session.Set(keywords, key)
	a.recordGeneration(status.Generation{
		Columns: cols,
		Config:  cfg,
		Unique:  len(combos),
		Output:  len(keywords),
		At:      time.Now(),
	})

	a.Log.Info("generated",
		zap.String("mode", cfg.Mode.String()),
		zap.Strings("match_types", cfg.MatchTypes.Names()),
		zap.Int("raw", raw),
		zap.Int("unique", len(combos)),
		zap.Int("keywords", len(keywords)),
		zap.Int("excluded", excluded),
		zap.Duration("elapsed", elapsed))

	return &socket.GenerateResult{
		Keywords: view,
		Count:    len(view),
		Unique:   len(combos),
		Raw:      raw,
		Excluded: excluded,
		Sort:     key.String(),
		Warning:  warning,
		Elapsed:  elapsed.Round(time.Microsecond).String(),
	}, nil
}

// Sort orders p.Keywords, or re-orders the last result when none are given.
func (a *App) Sort(p socket.SortParams) (*socket.SortResult, error) {
	key, err := a.sortKey(p.Sort)
	if err != nil {
		return nil, err
	}
	var out []string
	if len(p.Keywords) > 0 {
		out = combo.Sort(p.Keywords, key)
	} else {
		out = a.session.Sort(key)
	}
	return &socket.SortResult{Keywords: out, Count: len(out), Sort: key.String()}, nil
}

// Health reports daemon counters.
func (a *App) Health() *socket.HealthResult {
	a.mu.Lock()
	n := a.generations
	a.mu.Unlock()

	campaigns, err := a.Store.Campaigns()
	if err != nil {
		a.Log.Warn("count campaigns", zap.Error(err))
	}
	return &socket.HealthResult{
		Status:      "ok",
		Generations: n,
		LastCount:   a.session.Len(),
		Campaigns:   len(campaigns),
		Uptime:      time.Since(a.started).Round(time.Second).String(),
	}
}

// SaveList stores a keyword list. Without keywords, the list is generated
// from the given columns and config first.
func (a *App) SaveList(p socket.SaveListParams) (*ports.ListSummary, error) {
	cfg := p.ResolveConfig(a.Settings.EngineConfig())
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrInvalid, err)
	}
	keywords := p.Keywords
	if len(keywords) == 0 {
		key, err := a.sortKey(p.Sort)
		if err != nil {
			return nil, err
		}
		keywords, _ = ahocorasick.NewFilter(p.Exclude).Apply(combo.GenerateText(p.Columns[0], p.Columns[1], p.Columns[2], cfg))
		keywords = combo.Sort(keywords, key)
	}

	list := &ports.KeywordList{
		ID:       p.ID,
		Name:     p.Name,
		Campaign: p.Campaign,
		AdGroup:  p.AdGroup,
		Columns:  p.Columns,
		Config:   cfg,
		Sort:     p.Sort,
		Keywords: keywords,
	}
	if list.Name == "" {
		list.Name = time.Now().Format("2006-01-02 15:04")
	}
	if err := a.Store.SaveList(list); err != nil {
		return nil, fmt.Errorf("save list: %w", err)
	}
	a.Log.Info("list saved",
		zap.String("campaign", list.Campaign),
		zap.String("ad_group", list.AdGroup),
		zap.String("id", list.ID),
		zap.Int("keywords", len(list.Keywords)))
	sum := list.Summary()
	return &sum, nil
}

// GetList loads one saved list.
func (a *App) GetList(ref socket.ListRef) (*ports.KeywordList, error) {
	return a.Store.LoadList(ref.Campaign, ref.AdGroup, ref.ID)
}

// Lists returns campaign names when no campaign is given, otherwise the
// lists under the campaign (optionally narrowed to one ad group).
func (a *App) Lists(p socket.ListsParams) (*socket.ListsResult, error) {
	if p.Campaign == "" {
		names, err := a.Store.Campaigns()
		if err != nil {
			return nil, err
		}
		return &socket.ListsResult{Campaigns: names, Count: len(names)}, nil
	}
	lists, err := a.Store.ListLists(p.Campaign, p.AdGroup)
	if err != nil {
		return nil, err
	}
	return &socket.ListsResult{Lists: lists, Count: len(lists)}, nil
}

// DeleteList removes one saved list. Idempotent.
func (a *App) DeleteList(ref socket.ListRef) error {
	if err := a.Store.DeleteList(ref.Campaign, ref.AdGroup, ref.ID); err != nil {
		return err
	}
	a.Log.Info("list deleted", zap.String("campaign", ref.Campaign), zap.String("ad_group", ref.AdGroup), zap.String("id", ref.ID))
	return nil
}

func (a *App) sortKey(name string) (combo.SortKey, error) {
	if name == "" {
		return a.Settings.SortKey(), nil
	}
	key, err := combo.ParseSortKey(name)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ports.ErrInvalid, err)
	}
	return key, nil
}

// largeInputWarning returns a user-facing notice when raw exceeds the
// configured threshold. Generation still proceeds.
func (a *App) largeInputWarning(raw int) string {
	limit := a.Settings.Limits.WarnCombinations
	if limit <= 0 || raw <= limit {
		return ""
	}
	a.Log.Warn("large generation", zap.Int("raw", raw), zap.Int("warn_combinations", limit))
	return LargeInputWarning(raw, limit)
}

// LargeInputWarning formats the notice shown when a generation is expected
// to exceed limit combinations.
func LargeInputWarning(raw, limit int) string {
	return fmt.Sprintf("about %d combinations (warning threshold %d); this may take a while", raw, limit)
}

// recordGeneration bumps the counter and rewrites the status file.
func (a *App) recordGeneration(g status.Generation) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.generations++
	if err := status.WriteJSON(a.Paths.Status, status.Generate(g, a.generations)); err != nil {
		a.Log.Warn("write status", zap.Error(err), zap.String("path", a.Paths.Status))
	}
}

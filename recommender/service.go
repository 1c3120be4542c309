package recommender

import (
	"errors"
	"log"
	"sync"
)

// ErrNoModel is returned when a query arrives before any data or model was
// loaded into the session.
var ErrNoModel = errors.New("no model loaded")

// Session owns the merged table and serves recommendation queries against
// it. All mutation goes through explicit Load/Reload calls; queries see a
// consistent snapshot and never change state.
type Session struct {
	mu    sync.RWMutex
	cfg   Config
	table *MergedTable
	meta  ModelMetadata

	logger *log.Logger
}

// NewSession constructs a session with the given configuration. No data is
// loaded yet; call LoadData or LoadModel first.
func NewSession(cfg Config, logger *log.Logger) *Session {
	cfg.ApplyDefaults()
	return &Session{cfg: cfg, logger: logger}
}

// Config returns a copy of the current configuration.
func (s *Session) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// UpdateConfig replaces the configuration. The loaded table is kept; call
// Reload to rebuild it under the new settings.
func (s *Session) UpdateConfig(cfg Config) {
	cfg.ApplyDefaults()
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

// LoadData builds the table from the configured data directory and replaces
// the session's current table.
func (s *Session) LoadData() (*LoadReport, error) {
	cfg := s.Config()

	if err := EnsureBranchRuleFile(cfg.BranchRulePath); err != nil {
		s.logf("branch rule file: %v", err)
	}
	rules, custom, err := LoadBranchRules(cfg.BranchRulePath)
	if err != nil {
		s.logf("branch rules fall back to defaults: %v", err)
	} else if custom {
		s.logf("Loaded %d branch rules from %s", len(rules), cfg.BranchRulePath)
	}

	loader := &Loader{
		Threshold:  cfg.MatchThreshold,
		Rules:      rules,
		CutoffOpts: cfg.CutoffColumns,
		VFMOpts:    cfg.VFMColumns,
	}
	table, report, err := loader.LoadDir(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	meta := ModelMetadata{
		RecordCount:  report.RecordCount,
		CollegeCount: report.CollegeCount,
		VFMMatched:   report.VFMMatched,
		Sources:      report.Sources,
	}

	s.mu.Lock()
	s.table = table
	s.meta = meta
	s.mu.Unlock()

	s.logf("Loaded %d records for %d colleges from %d sources (%d warnings)",
		report.RecordCount, report.CollegeCount, len(report.Sources), len(report.Warnings))
	for _, w := range report.Warnings {
		s.logf("skip %s", w)
	}
	return report, nil
}

// Reload rebuilds the table from the data directory under the current
// configuration.
func (s *Session) Reload() (*LoadReport, error) {
	return s.LoadData()
}

// LoadModel replaces the session table with a previously saved model.
func (s *Session) LoadModel(path string) error {
	if path == "" {
		path = s.Config().ModelPath
	}
	table, meta, err := LoadModel(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.table = table
	s.meta = meta
	s.mu.Unlock()
	s.logf("Loaded model: %d records, %d colleges", meta.RecordCount, meta.CollegeCount)
	return nil
}

// SaveModel writes the session table to the configured model path, or to an
// explicit path when given.
func (s *Session) SaveModel(path string) error {
	s.mu.RLock()
	table, meta := s.table, s.meta
	s.mu.RUnlock()
	if table == nil {
		return ErrNoModel
	}
	if path == "" {
		path = s.Config().ModelPath
	}
	if err := SaveModel(path, table, meta); err != nil {
		return err
	}
	s.logf("Saved model to %s", path)
	return nil
}

// Recommend answers one query against the current table snapshot.
func (s *Session) Recommend(q Query) ([]Entry, error) {
	s.mu.RLock()
	table := s.table
	cfg := s.cfg
	s.mu.RUnlock()
	if table == nil {
		return nil, ErrNoModel
	}
	if q.Rank <= 0 {
		return nil, errors.New("rank must be positive")
	}
	if q.Category == "" {
		q.Category = CategoryGeneral
	}
	ranker := NewRanker(NewEstimator(cfg.Floor, cfg.OverflowMargin), cfg.ProbWeight, cfg.VFMWeight, cfg.DefaultVFM)
	entries := ranker.Recommend(table, q)
	s.logf("Query rank=%d category=%s: %d recommendations", q.Rank, q.Category, len(entries))
	return entries, nil
}

// Table returns the current table snapshot, or nil when nothing is loaded.
// Callers must treat it as read-only.
func (s *Session) Table() *MergedTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// Metadata returns the build metadata of the loaded table.
func (s *Session) Metadata() ModelMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meta
}

func (s *Session) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/hangang-labs/aptsync/internal/core/domain"
	"github.com/hangang-labs/aptsync/internal/core/ports/driven"
)

// Ensure SettingsStore implements the interface.
var _ driven.SettingsProvider = (*SettingsStore)(nil)

// SettingsStore resolves per-dataset run settings from a TOML file and
// the environment.
type SettingsStore struct {
	filePath string
	cfg      fileConfig
	getenv   func(string) string
}

// fileConfig mirrors config.toml. Zero values mean "not set" so the
// compiled defaults survive; max_scan_pages is a pointer because zero
// is a meaningful value there (scan the whole dataset).
type fileConfig struct {
	APIKey       string   `toml:"api_key"`
	PageSize     int      `toml:"page_size"`
	ThrottleMS   int      `toml:"throttle_ms"`
	TimeoutS     int      `toml:"timeout_s"`
	CommitEvery  int      `toml:"commit_every"`
	HeadWindow   int      `toml:"head_window"`
	MaxScanPages *int     `toml:"max_scan_pages"`
	Datasets     []string `toml:"datasets"`

	Sale    datasetConfig `toml:"sale"`
	Rent    datasetConfig `toml:"rent"`
	AptInfo datasetConfig `toml:"aptinfo"`
}

type datasetConfig struct {
	APIKey        string `toml:"api_key"`
	Service       string `toml:"service"`
	Mode          string `toml:"mode"`
	ResumePage    int    `toml:"resume_page"`
	ForceAnchorID int64  `toml:"force_anchor_id"`
	ScanStrategy  string `toml:"scan_strategy"`
	PageSize      int    `toml:"page_size"`
	HeadWindow    int    `toml:"head_window"`
	MaxScanPages  *int   `toml:"max_scan_pages"`
}

// NewSettingsStore creates a settings store reading configDir's
// config.toml. If configDir is empty, defaults to ~/.aptsync. A missing
// file is fine: defaults plus environment cover the cron use case.
func NewSettingsStore(configDir string) (*SettingsStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".aptsync")
	}

	s := &SettingsStore{
		filePath: filepath.Join(configDir, "config.toml"),
		getenv:   os.Getenv,
	}

	data, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, &s.cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.filePath, err)
	}

	return s, nil
}

// Path returns the config file path.
func (s *SettingsStore) Path() string { return s.filePath }

// Datasets lists the datasets enabled in the config file, defaulting to
// all of them. Unknown names are skipped.
func (s *SettingsStore) Datasets() []domain.Dataset {
	if len(s.cfg.Datasets) == 0 {
		return domain.AllDatasets()
	}
	var out []domain.Dataset
	for _, name := range s.cfg.Datasets {
		d, err := domain.ParseDataset(name)
		if err != nil {
			continue
		}
		out = append(out, d)
	}
	return out
}

// SettingsFor resolves the settings for one dataset.
func (s *SettingsStore) SettingsFor(dataset domain.Dataset) (domain.IngestSettings, error) {
	if !dataset.IsValid() {
		return domain.IngestSettings{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedDataset, dataset)
	}

	out := domain.DefaultIngestSettings(dataset)
	s.applyGlobal(&out)
	s.applySection(&out, s.section(dataset))
	s.applyEnv(&out, dataset)
	return out, nil
}

func (s *SettingsStore) section(dataset domain.Dataset) datasetConfig {
	switch dataset {
	case domain.DatasetRent:
		return s.cfg.Rent
	case domain.DatasetAptInfo:
		return s.cfg.AptInfo
	default:
		return s.cfg.Sale
	}
}

func (s *SettingsStore) applyGlobal(out *domain.IngestSettings) {
	if s.cfg.APIKey != "" {
		out.APIKey = s.cfg.APIKey
	}
	if s.cfg.PageSize > 0 {
		out.PageSize = s.cfg.PageSize
	}
	if s.cfg.ThrottleMS > 0 {
		out.Throttle = time.Duration(s.cfg.ThrottleMS) * time.Millisecond
	}
	if s.cfg.TimeoutS > 0 {
		out.Timeout = time.Duration(s.cfg.TimeoutS) * time.Second
	}
	if s.cfg.CommitEvery > 0 {
		out.CommitEvery = s.cfg.CommitEvery
	}
	if s.cfg.HeadWindow > 0 {
		out.HeadWindow = s.cfg.HeadWindow
	}
	if s.cfg.MaxScanPages != nil {
		out.MaxScanPages = *s.cfg.MaxScanPages
	}
}

func (s *SettingsStore) applySection(out *domain.IngestSettings, sec datasetConfig) {
	if sec.APIKey != "" {
		out.APIKey = sec.APIKey
	}
	if sec.Service != "" {
		out.Service = sec.Service
	}
	if sec.Mode != "" {
		out.Mode = domain.IngestMode(sec.Mode)
	}
	if sec.ResumePage > 0 {
		out.ResumePage = sec.ResumePage
	}
	if sec.ForceAnchorID != 0 {
		out.ForcedAnchorID = sec.ForceAnchorID
	}
	if sec.ScanStrategy != "" {
		out.ScanStrategy = domain.ScanStrategy(sec.ScanStrategy)
	}
	if sec.PageSize > 0 {
		out.PageSize = sec.PageSize
	}
	if sec.HeadWindow > 0 {
		out.HeadWindow = sec.HeadWindow
	}
	if sec.MaxScanPages != nil {
		out.MaxScanPages = *sec.MaxScanPages
	}
}

func (s *SettingsStore) applyEnv(out *domain.IngestSettings, dataset domain.Dataset) {
	tok := strings.ToUpper(dataset.String())

	if v := s.getenv("SEOUL_API_KEY"); v != "" {
		out.APIKey = v
	}
	// Per-dataset key beats the shared one.
	if v := s.getenv("SEOUL_API_KEY_" + tok); v != "" {
		out.APIKey = v
	}
	if v, ok := s.envInt("SEOUL_PAGE_SIZE"); ok {
		out.PageSize = v
	}
	// Throttle is given in seconds, fractions allowed ("0.02" is 20ms).
	if v := s.getenv("SEOUL_API_THROTTLE"); v != "" {
		if sec, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && sec >= 0 {
			out.Throttle = time.Duration(sec * float64(time.Second))
		}
	}
	if v, ok := s.envInt("DB_COMMIT_EVERY"); ok {
		out.CommitEvery = v
	}
	if v, ok := s.envInt("ANCHOR_MAX_SCAN_PAGES"); ok {
		out.MaxScanPages = v
	}
	if v, ok := s.envInt("CLOUD_PULL_WINDOW"); ok {
		out.HeadWindow = v
	}
	if v := s.getenv(tok + "_MODE"); v != "" {
		out.Mode = domain.IngestMode(v)
	}
	if v, ok := s.envInt(tok + "_RESUME_PAGE"); ok {
		out.ResumePage = v
	}
	if v := s.getenv(tok + "_SERVICE"); v != "" {
		out.Service = v
	}
	if v := s.getenv(tok + "_SCAN_STRATEGY"); v != "" {
		out.ScanStrategy = domain.ScanStrategy(v)
	}
	if v := s.getenv("FORCE_" + tok + "_ANCHOR_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			out.ForcedAnchorID = id
		}
	}
}

func (s *SettingsStore) envInt(name string) (int, bool) {
	v := s.getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return n, true
}

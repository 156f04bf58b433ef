package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/amishk599/jobrank/internal/model"
	"github.com/amishk599/jobrank/internal/scoring"
)

// Config is the root configuration for jobrank.
type Config struct {
	Path string // file the config was loaded from
	Dir  string // directory relative paths are resolved against

	Interval     time.Duration
	Sources      []SourceConfig
	Preferences  model.Preferences
	Scoring      ScoringConfig
	Pipeline     PipelineConfig
	Storage      StorageConfig
	Dedup        DedupConfig
	RateLimit    RateLimitConfig
	Retry        RetryConfig
	Notification NotificationConfig
	Similarity   SimilarityConfig
	CV           CVConfig
	Server       ServerConfig
}

// SourceConfig describes one configured source.
type SourceConfig struct {
	Name       string              `yaml:"name"`
	Kind       string              `yaml:"kind"`
	URL        string              `yaml:"url"`
	BoardToken string              `yaml:"board_token"`
	Company    string              `yaml:"company"`
	Identity   string              `yaml:"identity"`
	Selectors  model.HTMLSelectors `yaml:"selectors"`
	Enabled    *bool               `yaml:"enabled"` // nil means enabled
}

// IsEnabled reports whether the source takes part in runs.
func (s SourceConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Descriptor converts the config entry into the pipeline's source descriptor.
func (s SourceConfig) Descriptor() model.SourceDescriptor {
	return model.SourceDescriptor{
		Name:       s.Name,
		Kind:       model.SourceKind(strings.ToLower(strings.TrimSpace(s.Kind))),
		URL:        s.URL,
		BoardToken: s.BoardToken,
		Company:    s.Company,
		Identity:   s.Identity,
		Selectors:  s.Selectors,
	}
}

// ScoringConfig holds the score weights and the skill vocabulary.
type ScoringConfig struct {
	Weights scoring.Weights
	// Skills is the vocabulary. Empty means the token heuristic is used.
	Skills []string
}

// PipelineConfig tunes the fetch phase and link handling.
type PipelineConfig struct {
	Workers           int
	FetchTimeout      time.Duration
	DropRedirectLinks bool
}

// StorageConfig selects the SQL backend.
type StorageConfig struct {
	Driver string // "sqlite" or "postgres"
	DSN    string
}

// DedupConfig selects where seen identities are kept.
type DedupConfig struct {
	Backend   string // "sql", "redis" or "none"
	RedisURL  string
	Retention time.Duration // zero keeps entries forever
}

// RateLimitConfig controls per-kind request pacing.
type RateLimitConfig struct {
	MinDelay      time.Duration
	KindOverrides map[string]time.Duration
}

// RetryConfig controls retries of transient fetch failures.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type           string // "log", "slack" or "telegram"
	WebhookURL     string
	TelegramToken  string
	TelegramChatID int64
	MaxJobs        int
}

// SimilarityConfig controls resume matching.
type SimilarityConfig struct {
	ResumePath string
	Method     string // "tfidf" or "embedding"
	BaseURL    string
	Model      string
	APIKey     string
	Timeout    time.Duration
}

// CVConfig controls tailored CV generation for notified postings. An empty
// Template disables it.
type CVConfig struct {
	Template  string // base resume, a text/template file
	OutputDir string
	TopSkills int
	Name      string
	Email     string
}

// Enabled reports whether CVs are rendered.
func (c CVConfig) Enabled() bool {
	return c.Template != ""
}

// ServerConfig configures the read API.
type ServerConfig struct {
	Addr string
}

const (
	defaultInterval       = time.Hour
	defaultWorkers        = 4
	defaultFetchTimeout   = 30 * time.Second
	defaultMinDelay       = 2 * time.Second
	defaultMaxRetries     = 2
	defaultBaseDelay      = 5 * time.Second
	defaultMaxDelay       = time.Minute
	defaultMaxJobs        = 10
	defaultSQLiteDSN      = "jobrank.db"
	defaultEmbeddingURL   = "https://api.openai.com/v1"
	defaultEmbeddingModel = "text-embedding-3-small"
	defaultAITimeout      = 30 * time.Second
	defaultCVOutputDir    = "generated_cvs"
	defaultCVTopSkills    = 8
	slackWebhookPrefix    = "https://hooks.slack.com/"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	Schedule struct {
		Interval string `yaml:"interval"`
	} `yaml:"schedule"`
	Sources     []SourceConfig `yaml:"sources"`
	Preferences struct {
		Titles          []string `yaml:"titles"`
		IncludeKeywords []string `yaml:"include_keywords"`
		ExcludeKeywords []string `yaml:"exclude_keywords"`
		Locations       []string `yaml:"locations"`
		Role            string   `yaml:"role"`
	} `yaml:"preferences"`
	Scoring struct {
		Weights         scoring.Weights `yaml:"weights"`
		Skills          []string        `yaml:"skills"`
		SkillsFile      string          `yaml:"skills_file"`
		HeuristicSkills bool            `yaml:"heuristic_skills"`
	} `yaml:"scoring"`
	Pipeline struct {
		Workers           int    `yaml:"workers"`
		FetchTimeout      string `yaml:"fetch_timeout"`
		DropRedirectLinks bool   `yaml:"drop_redirect_links"`
	} `yaml:"pipeline"`
	Storage struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"storage"`
	Dedup struct {
		Backend   string `yaml:"backend"`
		RedisURL  string `yaml:"redis_url"`
		Retention string `yaml:"retention"`
	} `yaml:"dedup"`
	RateLimit struct {
		MinDelay      string            `yaml:"min_delay"`
		KindOverrides map[string]string `yaml:"kind_overrides"`
	} `yaml:"rate_limit"`
	Retry struct {
		MaxRetries *int   `yaml:"max_retries"`
		BaseDelay  string `yaml:"base_delay"`
		MaxDelay   string `yaml:"max_delay"`
	} `yaml:"retry"`
	Notification struct {
		Type           string `yaml:"type"`
		WebhookURL     string `yaml:"webhook_url"`
		TelegramToken  string `yaml:"telegram_token"`
		TelegramChatID int64  `yaml:"telegram_chat_id"`
		MaxJobs        int    `yaml:"max_jobs"`
	} `yaml:"notification"`
	Similarity struct {
		ResumePath string `yaml:"resume_path"`
		Method     string `yaml:"method"`
		BaseURL    string `yaml:"base_url"`
		Model      string `yaml:"model"`
		APIKey     string `yaml:"api_key"`
		Timeout    string `yaml:"timeout"`
	} `yaml:"similarity"`
	CV struct {
		Template  string `yaml:"template"`
		OutputDir string `yaml:"output_dir"`
		TopSkills int    `yaml:"top_skills"`
		Name      string `yaml:"name"`
		Email     string `yaml:"email"`
	} `yaml:"cv"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
}

// LoadDotEnv loads a .env file from the working directory and from dir, if
// present. Variables already set in the environment win.
func LoadDotEnv(dir string) error {
	for _, p := range []string{".env", filepath.Join(dir, ".env")} {
		if err := godotenv.Load(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	dir := filepath.Dir(path)
	cfg := &Config{
		Path:    path,
		Dir:     dir,
		Sources: raw.Sources,
		Preferences: model.Preferences{
			Titles:          raw.Preferences.Titles,
			IncludeKeywords: raw.Preferences.IncludeKeywords,
			ExcludeKeywords: raw.Preferences.ExcludeKeywords,
			Locations:       raw.Preferences.Locations,
			Role:            strings.TrimSpace(raw.Preferences.Role),
		},
		Pipeline: PipelineConfig{
			Workers:           raw.Pipeline.Workers,
			DropRedirectLinks: raw.Pipeline.DropRedirectLinks,
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(raw.Storage.Driver),
			DSN:    raw.Storage.DSN,
		},
		Dedup: DedupConfig{
			Backend:  strings.ToLower(raw.Dedup.Backend),
			RedisURL: raw.Dedup.RedisURL,
		},
		Retry: RetryConfig{MaxRetries: defaultMaxRetries},
		Notification: NotificationConfig{
			Type:           strings.ToLower(raw.Notification.Type),
			WebhookURL:     raw.Notification.WebhookURL,
			TelegramToken:  raw.Notification.TelegramToken,
			TelegramChatID: raw.Notification.TelegramChatID,
			MaxJobs:        raw.Notification.MaxJobs,
		},
		Similarity: SimilarityConfig{
			ResumePath: resolve(dir, raw.Similarity.ResumePath),
			Method:     strings.ToLower(raw.Similarity.Method),
			BaseURL:    raw.Similarity.BaseURL,
			Model:      raw.Similarity.Model,
			APIKey:     raw.Similarity.APIKey,
		},
		CV: CVConfig{
			Template:  resolve(dir, raw.CV.Template),
			OutputDir: raw.CV.OutputDir,
			TopSkills: raw.CV.TopSkills,
			Name:      raw.CV.Name,
			Email:     raw.CV.Email,
		},
		Server: ServerConfig{Addr: raw.Server.Addr},
	}

	durations := []struct {
		field string
		value string
		def   time.Duration
		dst   *time.Duration
	}{
		{"schedule.interval", raw.Schedule.Interval, defaultInterval, &cfg.Interval},
		{"pipeline.fetch_timeout", raw.Pipeline.FetchTimeout, defaultFetchTimeout, &cfg.Pipeline.FetchTimeout},
		{"dedup.retention", raw.Dedup.Retention, 0, &cfg.Dedup.Retention},
		{"rate_limit.min_delay", raw.RateLimit.MinDelay, defaultMinDelay, &cfg.RateLimit.MinDelay},
		{"retry.base_delay", raw.Retry.BaseDelay, defaultBaseDelay, &cfg.Retry.BaseDelay},
		{"retry.max_delay", raw.Retry.MaxDelay, defaultMaxDelay, &cfg.Retry.MaxDelay},
		{"similarity.timeout", raw.Similarity.Timeout, defaultAITimeout, &cfg.Similarity.Timeout},
	}
	for _, d := range durations {
		if *d.dst, err = parseDuration(d.field, d.value, d.def); err != nil {
			return nil, err
		}
	}

	cfg.RateLimit.KindOverrides = make(map[string]time.Duration)
	for kind, v := range raw.RateLimit.KindOverrides {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse rate_limit.kind_overrides[%q]: %w", kind, err)
		}
		cfg.RateLimit.KindOverrides[kind] = d
	}

	if raw.Retry.MaxRetries != nil {
		cfg.Retry.MaxRetries = *raw.Retry.MaxRetries
	}

	cfg.Scoring.Weights = raw.Scoring.Weights
	if cfg.Scoring.Weights == (scoring.Weights{}) {
		cfg.Scoring.Weights = scoring.DefaultWeights()
	}
	if !raw.Scoring.HeuristicSkills {
		cfg.Scoring.Skills = raw.Scoring.Skills
		if raw.Scoring.SkillsFile != "" {
			fromFile, err := readLines(resolve(dir, raw.Scoring.SkillsFile))
			if err != nil {
				return nil, fmt.Errorf("read scoring.skills_file: %w", err)
			}
			cfg.Scoring.Skills = append(cfg.Scoring.Skills, fromFile...)
		}
		if len(cfg.Scoring.Skills) == 0 {
			cfg.Scoring.Skills = scoring.DefaultSkills
		}
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Pipeline.Workers <= 0 {
		cfg.Pipeline.Workers = defaultWorkers
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Storage.DSN == "" && cfg.Storage.Driver == "sqlite" {
		cfg.Storage.DSN = defaultSQLiteDSN
	}
	if cfg.Storage.Driver == "sqlite" && cfg.Storage.DSN != ":memory:" {
		cfg.Storage.DSN = resolve(cfg.Dir, cfg.Storage.DSN)
	}
	if cfg.Dedup.Backend == "" {
		cfg.Dedup.Backend = "sql"
	}
	if cfg.Notification.Type == "" {
		cfg.Notification.Type = "log"
	}
	if cfg.Notification.MaxJobs == 0 {
		cfg.Notification.MaxJobs = defaultMaxJobs
	}
	if cfg.Similarity.Method == "" {
		cfg.Similarity.Method = "tfidf"
	}
	if cfg.CV.OutputDir == "" {
		cfg.CV.OutputDir = defaultCVOutputDir
	}
	cfg.CV.OutputDir = resolve(cfg.Dir, cfg.CV.OutputDir)
	if cfg.CV.TopSkills == 0 {
		cfg.CV.TopSkills = defaultCVTopSkills
	}
	if cfg.Similarity.Method == "embedding" {
		if cfg.Similarity.BaseURL == "" {
			cfg.Similarity.BaseURL = defaultEmbeddingURL
		}
		if cfg.Similarity.Model == "" {
			cfg.Similarity.Model = defaultEmbeddingModel
		}
	}
}

func validate(cfg *Config) error {
	if cfg.Interval <= 0 {
		return fmt.Errorf("schedule.interval must be positive, got %v", cfg.Interval)
	}

	names := make(map[string]bool)
	enabled := 0
	for i, s := range cfg.Sources {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("sources[%d]: name is required", i)
		}
		if names[s.Name] {
			return fmt.Errorf("sources[%d]: duplicate name %q", i, s.Name)
		}
		names[s.Name] = true
		if s.Identity != "" && s.Identity != "external_id" {
			return fmt.Errorf("source %q: identity must be empty or \"external_id\", got %q", s.Name, s.Identity)
		}
		if s.IsEnabled() {
			enabled++
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}

	if cfg.Pipeline.FetchTimeout <= 0 {
		return fmt.Errorf("pipeline.fetch_timeout must be positive, got %v", cfg.Pipeline.FetchTimeout)
	}
	if cfg.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative, got %d", cfg.Retry.MaxRetries)
	}

	switch cfg.Storage.Driver {
	case "sqlite":
	case "postgres":
		if cfg.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("storage.driver must be sqlite or postgres, got %q", cfg.Storage.Driver)
	}

	switch cfg.Dedup.Backend {
	case "sql", "none":
	case "redis":
		if cfg.Dedup.RedisURL == "" {
			return fmt.Errorf("dedup.redis_url is required when backend is \"redis\"")
		}
	default:
		return fmt.Errorf("dedup.backend must be sql, redis or none, got %q", cfg.Dedup.Backend)
	}

	switch cfg.Notification.Type {
	case "log":
	case "slack":
		if !strings.HasPrefix(cfg.Notification.WebhookURL, slackWebhookPrefix) {
			return fmt.Errorf("notification.webhook_url must start with %s", slackWebhookPrefix)
		}
	case "telegram":
		if cfg.Notification.TelegramToken == "" || cfg.Notification.TelegramChatID == 0 {
			return fmt.Errorf("notification.telegram_token and telegram_chat_id are required when type is \"telegram\"")
		}
	default:
		return fmt.Errorf("notification.type must be log, slack or telegram, got %q", cfg.Notification.Type)
	}

	switch cfg.Similarity.Method {
	case "tfidf", "embedding":
	default:
		return fmt.Errorf("similarity.method must be tfidf or embedding, got %q", cfg.Similarity.Method)
	}

	if cfg.CV.TopSkills < 0 {
		return fmt.Errorf("cv.top_skills must not be negative, got %d", cfg.CV.TopSkills)
	}

	return nil
}

// EnabledSources returns the descriptors of every enabled source, in config order.
func (c *Config) EnabledSources() []model.SourceDescriptor {
	var out []model.SourceDescriptor
	for _, s := range c.Sources {
		if s.IsEnabled() {
			out = append(out, s.Descriptor())
		}
	}
	return out
}

// LoadResume returns the resume text, or "" when no resume is configured.
func (c *Config) LoadResume() (string, error) {
	if c.Similarity.ResumePath == "" {
		return "", nil
	}
	data, err := os.ReadFile(c.Similarity.ResumePath)
	if err != nil {
		return "", fmt.Errorf("read resume: %w", err)
	}
	return string(data), nil
}

func parseDuration(field, value string, def time.Duration) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, value, err)
	}
	return d, nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// readLines reads one entry per line, skipping blanks and # comments.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}

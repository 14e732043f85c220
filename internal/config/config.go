package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when neither the environment nor the config file sets a value.
const (
	DefaultRegion        = "eu-west-2"
	DefaultOverviewModel = "gpt-4o"
	DefaultPolicyModel   = "gpt-3.5-turbo"
	DefaultCacheTTL      = 15 * time.Minute
	DefaultMaxConcurrent = 5
)

// Settings holds the read-only process-wide configuration for one batch run.
// Credentials are never mutated mid-batch.
type Settings struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Region          string

	OpenAIAPIKey  string
	OverviewModel string
	PolicyModel   string

	CacheTTL      time.Duration
	MaxConcurrent int
}

// Load builds Settings from the environment, then overlays the optional YAML
// file at configPath (empty path skips the overlay), then fills defaults.
func Load(configPath string) (*Settings, error) {
	s := &Settings{
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Region:          os.Getenv("AWS_REGION"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OverviewModel:   os.Getenv("OPENAI_OVERVIEW_MODEL"),
		PolicyModel:     os.Getenv("OPENAI_POLICY_MODEL"),
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
		var raw fileSettings
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
		overlay, err := raw.toSettings()
		if err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
		s.merge(overlay)
	}

	s.applyDefaults()
	return s, nil
}

// fileSettings is the YAML shape of the config file. The TTL is a duration
// string like "15m" so it reads naturally in YAML.
type fileSettings struct {
	AccessKeyID     string `yaml:"accessKeyId"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	SessionToken    string `yaml:"sessionToken"`
	Region          string `yaml:"region"`

	OpenAIAPIKey  string `yaml:"openaiApiKey"`
	OverviewModel string `yaml:"overviewModel"`
	PolicyModel   string `yaml:"policyModel"`

	CacheTTL      string `yaml:"cacheTTL"`
	MaxConcurrent int    `yaml:"maxConcurrent"`
}

func (f *fileSettings) toSettings() (*Settings, error) {
	s := &Settings{
		AccessKeyID:     f.AccessKeyID,
		SecretAccessKey: f.SecretAccessKey,
		SessionToken:    f.SessionToken,
		Region:          f.Region,
		OpenAIAPIKey:    f.OpenAIAPIKey,
		OverviewModel:   f.OverviewModel,
		PolicyModel:     f.PolicyModel,
		MaxConcurrent:   f.MaxConcurrent,
	}
	if f.CacheTTL != "" {
		ttl, err := time.ParseDuration(f.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("bad cacheTTL %q: %w", f.CacheTTL, err)
		}
		s.CacheTTL = ttl
	}
	return s, nil
}

func (s *Settings) merge(o *Settings) {
	if o.AccessKeyID != "" {
		s.AccessKeyID = o.AccessKeyID
	}
	if o.SecretAccessKey != "" {
		s.SecretAccessKey = o.SecretAccessKey
	}
	if o.SessionToken != "" {
		s.SessionToken = o.SessionToken
	}
	if o.Region != "" {
		s.Region = o.Region
	}
	if o.OpenAIAPIKey != "" {
		s.OpenAIAPIKey = o.OpenAIAPIKey
	}
	if o.OverviewModel != "" {
		s.OverviewModel = o.OverviewModel
	}
	if o.PolicyModel != "" {
		s.PolicyModel = o.PolicyModel
	}
	if o.CacheTTL > 0 {
		s.CacheTTL = o.CacheTTL
	}
	if o.MaxConcurrent > 0 {
		s.MaxConcurrent = o.MaxConcurrent
	}
}

func (s *Settings) applyDefaults() {
	if s.Region == "" {
		s.Region = DefaultRegion
	}
	if s.OverviewModel == "" {
		s.OverviewModel = DefaultOverviewModel
	}
	if s.PolicyModel == "" {
		s.PolicyModel = DefaultPolicyModel
	}
	if s.CacheTTL <= 0 {
		s.CacheTTL = DefaultCacheTTL
	}
	if s.MaxConcurrent <= 0 {
		s.MaxConcurrent = DefaultMaxConcurrent
	}
}

// Validate checks the fatal preconditions for a batch run. A missing
// credential fails the whole enumeration up front, never per principal.
func (s *Settings) Validate(requireAnalysis bool) error {
	if s.AccessKeyID == "" || s.SecretAccessKey == "" || s.SessionToken == "" {
		return fmt.Errorf("missing credentials: accessKeyId, secretAccessKey and sessionToken are all required")
	}
	if s.Region == "" {
		return fmt.Errorf("missing region")
	}
	if requireAnalysis && s.OpenAIAPIKey == "" {
		return fmt.Errorf("missing OpenAI API key (set OPENAI_API_KEY or run with --no-analysis)")
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setCredentials(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIAEXAMPLE")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("AWS_SESSION_TOKEN", "token")
	t.Setenv("OPENAI_API_KEY", "sk-test")
}

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_SESSION_TOKEN",
		"AWS_REGION", "OPENAI_API_KEY", "OPENAI_OVERVIEW_MODEL", "OPENAI_POLICY_MODEL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	setCredentials(t)

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if s.Region != DefaultRegion {
		t.Errorf("Region = %q, want %q", s.Region, DefaultRegion)
	}
	if s.OverviewModel != DefaultOverviewModel || s.PolicyModel != DefaultPolicyModel {
		t.Errorf("models = %q / %q", s.OverviewModel, s.PolicyModel)
	}
	if s.CacheTTL != DefaultCacheTTL {
		t.Errorf("CacheTTL = %v, want %v", s.CacheTTL, DefaultCacheTTL)
	}
	if s.MaxConcurrent != DefaultMaxConcurrent {
		t.Errorf("MaxConcurrent = %d, want %d", s.MaxConcurrent, DefaultMaxConcurrent)
	}
}

func TestLoadFileOverlayWinsOverEnv(t *testing.T) {
	clearEnv(t)
	setCredentials(t)
	t.Setenv("AWS_REGION", "us-east-1")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "region: eu-central-1\noverviewModel: custom-model\ncacheTTL: 5m\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	// The file overlay wins over the environment value.
	if s.Region != "eu-central-1" {
		t.Errorf("Region = %q, want eu-central-1", s.Region)
	}
	if s.OverviewModel != "custom-model" {
		t.Errorf("OverviewModel = %q", s.OverviewModel)
	}
	if s.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %v, want 5m", s.CacheTTL)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	clearEnv(t)
	setCredentials(t)

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

// =============================================================================
// Validate TESTS
// =============================================================================

func TestValidate(t *testing.T) {
	base := Settings{
		AccessKeyID:     "AKIAEXAMPLE",
		SecretAccessKey: "secret",
		SessionToken:    "token",
		Region:          "eu-west-2",
		OpenAIAPIKey:    "sk-test",
	}

	tests := []struct {
		name            string
		mutate          func(*Settings)
		requireAnalysis bool
		wantErr         bool
	}{
		{
			name:            "complete settings pass",
			mutate:          func(s *Settings) {},
			requireAnalysis: true,
		},
		{
			name:            "missing access key is fatal",
			mutate:          func(s *Settings) { s.AccessKeyID = "" },
			requireAnalysis: true,
			wantErr:         true,
		},
		{
			name:            "missing secret is fatal",
			mutate:          func(s *Settings) { s.SecretAccessKey = "" },
			requireAnalysis: true,
			wantErr:         true,
		},
		{
			name:            "missing session token is fatal",
			mutate:          func(s *Settings) { s.SessionToken = "" },
			requireAnalysis: true,
			wantErr:         true,
		},
		{
			name:            "missing OpenAI key fatal when analysis required",
			mutate:          func(s *Settings) { s.OpenAIAPIKey = "" },
			requireAnalysis: true,
			wantErr:         true,
		},
		{
			name:            "missing OpenAI key fine without analysis",
			mutate:          func(s *Settings) { s.OpenAIAPIKey = "" },
			requireAnalysis: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			tt.mutate(&s)
			err := s.Validate(tt.requireAnalysis)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

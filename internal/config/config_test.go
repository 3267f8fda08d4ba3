package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MAX_CRUSH_ENTRIES", "")
	t.Setenv("GENERATION_LOCK_TTL", "not-a-duration")
	t.Setenv("AUTO_GENERATE_MATCHES", "")

	cfg := Load()
	require.Equal(t, 10, cfg.MaxCrushEntries)
	require.Equal(t, 10*time.Minute, cfg.GenerationLockTTL)
	require.Equal(t, "mock", cfg.EmailProvider)
	require.False(t, cfg.AutoGenerate, "generation is admin-triggered unless opted in")
	require.NoError(t, cfg.Validate())
}

func TestAdminEmailsNormalized(t *testing.T) {
	t.Setenv("ADMIN_EMAILS", " Admin@School.edu , ,ops@school.edu")

	cfg := Load()
	require.Equal(t, []string{"admin@school.edu", "ops@school.edu"}, cfg.AdminEmails)
	require.True(t, cfg.IsAdmin("ADMIN@school.edu "))
	require.False(t, cfg.IsAdmin("student@school.edu"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"production default secret", func(c *Config) { c.Environment = "production" }, "JWT secret"},
		{"sendgrid without key", func(c *Config) { c.EmailProvider = "sendgrid" }, "SendGrid API key"},
		{"unknown email provider", func(c *Config) { c.EmailProvider = "postmark" }, "invalid email provider"},
		{"smtp without host", func(c *Config) { c.EmailProvider = "smtp" }, "SMTP"},
		{"twilio incomplete", func(c *Config) { c.SMSProvider = "twilio" }, "Twilio"},
		{"archive without bucket", func(c *Config) { c.ArchiveGenerations = true }, "S3 bucket"},
		{"zero workers", func(c *Config) { c.GenerationWorkers = 0 }, "generation workers"},
		{"score out of range", func(c *Config) { c.MinMatchScore = 101 }, "min match score"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOriginAllowed(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://match.school.edu")

	cfg := Load()
	require.True(t, cfg.OriginAllowed("https://Match.School.edu"))
	require.False(t, cfg.OriginAllowed("https://evil.example"))

	cfg.AllowedOrigins = []string{"*"}
	require.True(t, cfg.OriginAllowed("https://evil.example"))
}

package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-import-service/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"PORT", "DEFAULT_SUBJECT", "MAX_UPLOAD_BYTES", "IMPORT_CACHE_TTL", "AUTH_ENABLED", "EVENTS_PUBLISHER"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "General", cfg.DefaultSubject)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 30*time.Minute, cfg.ImportCacheTTL)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, "kafka", cfg.Events.Publisher)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DEFAULT_SUBJECT", "Biology")
	t.Setenv("MAX_UPLOAD_BYTES", "2048")
	t.Setenv("IMPORT_CACHE_TTL", "5m")
	t.Setenv("AUTH_ENABLED", "false")
	t.Setenv("EVENTS_ENABLED", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "Biology", cfg.DefaultSubject)
	assert.Equal(t, int64(2048), cfg.MaxUploadBytes)
	assert.Equal(t, 5*time.Minute, cfg.ImportCacheTTL)
	assert.False(t, cfg.Auth.Enabled)
	assert.False(t, cfg.Events.Enabled)
}

func TestInvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("MAX_UPLOAD_BYTES", "lots")
	t.Setenv("IMPORT_CACHE_TTL", "soon")
	t.Setenv("AUTH_ENABLED", "maybe")

	assert.Equal(t, 42, getEnvInt("MAX_UPLOAD_BYTES", 42))
	assert.Equal(t, time.Second, getEnvDuration("IMPORT_CACHE_TTL", time.Second))
	assert.True(t, getEnvBool("AUTH_ENABLED", true))
}

func TestGetKafkaBrokers(t *testing.T) {
	cfg := EventConfig{KafkaBrokers: "kafka-1:9092, kafka-2:9092,,"}
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.GetKafkaBrokers())
}

func TestCreateEventPublisherFallsBackToMock(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	tests := []struct {
		name string
		cfg  EventConfig
	}{
		{"disabled", EventConfig{Enabled: false, Publisher: "kafka"}},
		{"mock", EventConfig{Enabled: true, Publisher: "mock"}},
		{"unknown", EventConfig{Enabled: true, Publisher: "carrier-pigeon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher, err := tt.cfg.CreateEventPublisher(logger)
			require.NoError(t, err)
			assert.IsType(t, &events.MockEventPublisher{}, publisher)
		})
	}
}

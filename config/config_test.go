package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "")
	t.Setenv("EXTERNAL_TIMEOUT", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, 5*time.Second, cfg.ExternalTimeout)
	assert.Equal(t, "gpt-3.5-turbo", cfg.OpenAIModel)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("EXTERNAL_TIMEOUT", "750ms")
	t.Setenv("BOUNDARY_CHECK", "true")
	t.Setenv("BOUNDARY_GEOJSON", " /etc/civicreport/toronto.geojson ")
	t.Setenv("REPORT_DAILY_LIMIT", "3")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 750*time.Millisecond, cfg.ExternalTimeout)
	assert.True(t, cfg.BoundaryCheck)
	assert.Equal(t, "/etc/civicreport/toronto.geojson", cfg.BoundaryFile)
	assert.Equal(t, 3, cfg.ReportDailyLimit)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoadRejectsMissingSettings(t *testing.T) {
	t.Run("mongo without uri", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "mongo")
		t.Setenv("MONGODB_URI", "")
		t.Setenv("JWT_SECRET", "secret")
		_, err := Load()
		assert.ErrorContains(t, err, "MONGODB_URI")
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "memory")
		t.Setenv("JWT_SECRET", "")
		_, err := Load()
		assert.ErrorContains(t, err, "JWT_SECRET")
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "postgres")
		t.Setenv("JWT_SECRET", "secret")
		_, err := Load()
		assert.Error(t, err)
	})
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "inventra-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 5*time.Minute, cfg.Cache.PermissionTTL)
	assert.Equal(t, 5*time.Second, cfg.Catalog.Timeout)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("INVENTRA_APP_PORT", "9090")
	t.Setenv("INVENTRA_DATABASE_DRIVER", "sqlite")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:    "unknown driver",
			mutate:  func(cfg *Config) { cfg.Database.Driver = "oracle" },
			wantErr: "database.driver",
		},
		{
			name:    "idle conns exceed open conns",
			mutate:  func(cfg *Config) { cfg.Database.MaxIdleConns = 50 },
			wantErr: "max_idle_conns",
		},
		{
			name: "production requires jwt secret",
			mutate: func(cfg *Config) {
				cfg.App.Env = "production"
			},
			wantErr: "jwt.secret",
		},
		{
			name: "production rejects sqlite",
			mutate: func(cfg *Config) {
				cfg.App.Env = "production"
				cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
				cfg.Database.Driver = "sqlite"
			},
			wantErr: "sqlite",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			applyDefaults(cfg)
			tt.mutate(cfg)

			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseDSNEscapesCredentials(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "app",
		Password: "p@ss:word/1",
		DBName:   "inventra",
		SSLMode:  "require",
	}
	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.internal:5432")
	assert.Contains(t, dsn, "sslmode=require")
	assert.NotContains(t, dsn, "p@ss:word/1")
}

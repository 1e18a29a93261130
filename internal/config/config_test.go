package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/buildsync/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, domain.DataVersion, cfg.DataVersion)
	require.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	cfg, err := Load("testdata/buildsync.yaml")
	require.NoError(t, err)

	assert.Equal(t, "/srv/buildsync/data", cfg.DataDir)
	assert.Equal(t, domain.DataVersion, cfg.DataVersion, "unset keys keep their default")
	assert.Equal(t, DriverRedis, cfg.Storage.Driver)
	assert.Equal(t, 2, cfg.Storage.RedisDB, "strings are weakly decoded")
	assert.Equal(t, 12*time.Hour, cfg.Storage.TTL)
	assert.Equal(t, "buildsync:cache:", cfg.Storage.Prefix)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.False(t, cfg.HTTP.Metrics)
	assert.True(t, cfg.Log.VerboseEngine)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("testdata/nope.yaml")
	assert.Error(t, err)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "colour: blue"},
		{"unknown driver", "storage: {driver: etcd}"},
		{"redis without address", "storage: {driver: redis}"},
		{"sqlite without path", "storage: {driver: sqlite, path: ''}"},
		{"port out of range", "http: {port: 70000}"},
		{"bad level", "log: {level: loud}"},
		{"bad format", "log: {format: xml}"},
		{"short encryption key", "storage: {encryption_key: c2hvcnQ=}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("storage: [unclosed"))
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	level, err = ParseLevel(" DEBUG ")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestStorage_Key(t *testing.T) {
	key, err := Storage{}.Key()
	require.NoError(t, err)
	assert.Nil(t, key)

	cfg, err := Parse([]byte("storage: {encryption_key: MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY=}"))
	require.NoError(t, err)
	key, err = cfg.Storage.Key()
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", string(key))
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "assets", cfg.AssetDir)
	assert.Equal(t, 92, cfg.JPEGQuality)
	assert.Equal(t, 3, cfg.CountdownSeconds)
	assert.Equal(t, time.Second, cfg.TickInterval)
	assert.Equal(t, 4, cfg.DecodeConcurrency)
	assert.Zero(t, cfg.DecodeInterval)
	assert.Empty(t, cfg.LayoutFile, "既定は同梱レイアウト")
}

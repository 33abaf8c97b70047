package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/smartpool/internal/common"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "pt", c.Language)
	assert.Equal(t, 15*time.Second, c.RequestTimeout)
	assert.Equal(t, "warn", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
	assert.Empty(t, c.StorePath)
	require.NoError(t, c.Validate())
}

func TestLoad_NoArgsGivesDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Equal(t, &want, cfg)
}

func TestLoad_FlagsOverrideJSON(t *testing.T) {
	path := writeTempJSON(t, "", "", map[string]any{
		"language":        "es",
		"request_timeout": "30s",
		"store_path":      "/from/json.json",
	})

	cfg, err := Load([]string{"-c", path, "-l", "en", "-s", "/from/flag.json"})
	require.NoError(t, err)

	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, "/from/flag.json", cfg.StorePath)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestValidate(t *testing.T) {
	var c Config
	c.LoadDefaults()
	c.Language = "fr"
	c.RequestTimeout = 0

	err := c.Validate()
	var verr *common.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "language")
	assert.Contains(t, verr.Fields, "request_timeout")

	c.Language = "en"
	err = c.Validate()
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{"request_timeout": "must be positive"}, verr.Fields)
}

func TestLoad_InvalidValue(t *testing.T) {
	_, err := Load([]string{"-l", "klingon"})
	require.ErrorIs(t, err, common.ErrValidation)
}

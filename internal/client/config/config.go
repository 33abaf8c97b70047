package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/smartpool/internal/client/firestore"
	"github.com/dmitrijs2005/smartpool/internal/client/identity"
	"github.com/dmitrijs2005/smartpool/internal/common"
	"github.com/dmitrijs2005/smartpool/internal/validation"
)

// Config holds runtime settings for the smartpool CLI.
//
// Units: RequestTimeout is a time.Duration applied to every remote call.
type Config struct {
	StorePath      string        `json:"store_path"`
	Language       string        `json:"language" validate:"oneof=pt en es"`
	RequestTimeout time.Duration `json:"request_timeout"`
	LogLevel       string        `json:"log_level" validate:"oneof=debug info warn error"`
	LogFormat      string        `json:"log_format" validate:"oneof=text json"`
	IdentityURL    string        `json:"identity_url" validate:"required,url"`
	FirestoreURL   string        `json:"firestore_url" validate:"required,url"`
}

// LoadDefaults populates c with sensible defaults. An empty StorePath
// means the per-user data directory.
func (c *Config) LoadDefaults() {
	c.StorePath = ""
	c.Language = "pt"
	c.RequestTimeout = 15 * time.Second
	c.LogLevel = "warn"
	c.LogFormat = "text"
	c.IdentityURL = identity.DefaultBaseURL
	c.FirestoreURL = firestore.DefaultBaseURL
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	err := validation.New().Struct(c)

	if c.RequestTimeout <= 0 {
		var verr *common.ValidationError
		if !errors.As(err, &verr) {
			verr = &common.ValidationError{Message: "validation failed", Fields: map[string]string{}}
			err = verr
		}
		verr.Fields["request_timeout"] = "must be positive"
	}
	return err
}

// LoadConfig constructs a Config from os.Args, see Load.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load applies defaults, then overlays values from JSON (if -c/-config is
// given) and command-line flags. Later sources take precedence over
// earlier ones.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

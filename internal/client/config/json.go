package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/smartpool/internal/flagx"
)

// Duration accepts "15s"-style strings or a plain number of seconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var secs float64
	if err := json.Unmarshal(b, &secs); err == nil {
		*d = Duration(secs * float64(time.Second))
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string or number: %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from "set to the zero value".
type JsonConfig struct {
	StorePath      *string   `json:"store_path"`
	Language       *string   `json:"language"`
	RequestTimeout *Duration `json:"request_timeout"`
	LogLevel       *string   `json:"log_level"`
	LogFormat      *string   `json:"log_format"`
	IdentityURL    *string   `json:"identity_url"`
	FirestoreURL   *string   `json:"firestore_url"`
}

// parseJson overlays cfg with the JSON file named by -c or -config.
// Without either flag it does nothing.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.StorePath, jc.StorePath)
	setString(&cfg.Language, jc.Language)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.IdentityURL, jc.IdentityURL)
	setString(&cfg.FirestoreURL, jc.FirestoreURL)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = time.Duration(*jc.RequestTimeout)
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

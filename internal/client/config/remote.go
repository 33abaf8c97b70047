package config

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/smartpool/internal/filex"
	"github.com/dmitrijs2005/smartpool/internal/logging"
)

const (
	EnvAPIKey    = "FIREBASE_API_KEY"
	EnvProjectID = "FIREBASE_PROJECT_ID"

	// RemoteFileName is looked up in each search directory.
	RemoteFileName = "firebase_config.json"

	PrefAPIKey    = "firebase_api_key"
	PrefProjectID = "firebase_project_id"
)

// Remote holds the credentials of the remote backend. The zero value means
// remote features are disabled.
type Remote struct {
	APIKey    string
	ProjectID string
	// Source names where the pair was found: "env", a file path or
	// "preferences".
	Source string
}

func (r Remote) Enabled() bool {
	return r.APIKey != "" && r.ProjectID != ""
}

// PreferenceReader is the slice of the local store ResolveRemote needs.
type PreferenceReader interface {
	Get(ctx context.Context, key string, dst any) error
}

type RemoteOptions struct {
	// EnvFiles are dotenv files read with godotenv. Real environment
	// variables take precedence over them. Default: ".env".
	EnvFiles []string
	// SearchDirs are checked in order for RemoteFileName.
	// Default: DefaultSearchDirs().
	SearchDirs []string
	// Prefs is consulted last; nil skips that step.
	Prefs  PreferenceReader
	Getenv func(string) string
	Log    logging.Logger
}

// DefaultSearchDirs lists the per-user config dir, the executable's dir and
// its parent, and the working directory.
func DefaultSearchDirs() []string {
	var dirs []string
	if base, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(base, filex.AppDirName))
	}
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		dirs = append(dirs, dir, filepath.Dir(dir))
	}
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	return dirs
}

// ResolveRemote finds the remote API key and project id. Sources are tried
// in order and the first one with both values wins:
//
//  1. environment (FIREBASE_API_KEY, FIREBASE_PROJECT_ID), then dotenv files
//  2. firebase_config.json in the search directories, with keys
//     api_key|FIREBASE_API_KEY and project_id|FIREBASE_PROJECT_ID
//  3. the local preferences firebase_api_key and firebase_project_id
//
// When nothing is found the zero Remote is returned and a warning logged.
func ResolveRemote(ctx context.Context, opts RemoteOptions) Remote {
	log := opts.Log
	if log == nil {
		log = logging.Nop()
	}
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	envFiles := opts.EnvFiles
	if envFiles == nil {
		envFiles = []string{".env"}
	}
	dirs := opts.SearchDirs
	if dirs == nil {
		dirs = DefaultSearchDirs()
	}

	if r := fromEnv(ctx, log, getenv, envFiles); r.Enabled() {
		return r
	}

	for _, dir := range dirs {
		path := filepath.Join(dir, RemoteFileName)
		r, err := fromFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			log.Warn(ctx, "cannot read remote config", "path", path, "error", err)
			continue
		}
		if r.Enabled() {
			log.Info(ctx, "remote config loaded", "path", path)
			return r
		}
	}

	if opts.Prefs != nil {
		var r Remote
		_ = opts.Prefs.Get(ctx, PrefAPIKey, &r.APIKey)
		_ = opts.Prefs.Get(ctx, PrefProjectID, &r.ProjectID)
		if r.Enabled() {
			r.Source = "preferences"
			log.Info(ctx, "remote config loaded from preferences")
			return r
		}
	}

	log.Warn(ctx, "remote backend not configured, running local-only")
	return Remote{}
}

func fromEnv(ctx context.Context, log logging.Logger, getenv func(string) string, files []string) Remote {
	r := Remote{APIKey: getenv(EnvAPIKey), ProjectID: getenv(EnvProjectID), Source: "env"}
	if r.Enabled() {
		return r
	}

	for _, f := range files {
		vars, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			log.Warn(ctx, "cannot read env file", "path", f, "error", err)
			continue
		}
		if r.APIKey == "" {
			r.APIKey = vars[EnvAPIKey]
		}
		if r.ProjectID == "" {
			r.ProjectID = vars[EnvProjectID]
		}
	}
	return r
}

func fromFile(path string) (Remote, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Remote{}, err
	}

	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return Remote{}, err
	}

	return Remote{
		APIKey:    firstString(m, "api_key", EnvAPIKey),
		ProjectID: firstString(m, "project_id", EnvProjectID),
		Source:    path,
	}, nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

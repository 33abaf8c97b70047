package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/smartpool/internal/client/models"
	"github.com/dmitrijs2005/smartpool/internal/common"
	"github.com/dmitrijs2005/smartpool/internal/logging"
	"github.com/dmitrijs2005/smartpool/internal/validation"
)

// SettingsKey is the preference key holding models.Settings.
const SettingsKey = "settings"

// PreferenceStore reads and writes raw preferences.
type PreferenceStore interface {
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, value any) error
}

// SettingsService reads and writes the device's user preferences.
type SettingsService interface {
	Get(ctx context.Context) (models.Settings, error)
	Save(ctx context.Context, s models.Settings) error
}

type settingsService struct {
	prefs    PreferenceStore
	validate *validation.Validator
	log      logging.Logger
}

func NewSettingsService(prefs PreferenceStore, log logging.Logger) SettingsService {
	return &settingsService{prefs: prefs, validate: validation.New(), log: log.With("component", "settings")}
}

// Get returns the stored settings, or the defaults when none were saved.
func (s *settingsService) Get(ctx context.Context) (models.Settings, error) {
	st := models.DefaultSettings()
	err := s.prefs.Get(ctx, SettingsKey, &st)
	if errors.Is(err, common.ErrNotFound) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.DefaultSettings(), fmt.Errorf("load settings: %w", err)
	}
	return st, nil
}

func (s *settingsService) Save(ctx context.Context, st models.Settings) error {
	if err := s.validate.Struct(st); err != nil {
		return err
	}
	if err := s.prefs.Set(ctx, SettingsKey, st); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	s.log.Info(ctx, "settings saved", "language", st.Language, "units", st.Units)
	return nil
}

package models

// Units selects how volumes are shown. Pools always store cubic metres.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

const cubicFeetPerCubicMetre = 35.3147

// VolumeLabel is the unit suffix for volumes.
func (u Units) VolumeLabel() string {
	if u == UnitsImperial {
		return "ft3"
	}
	return "m3"
}

// FromCubicMetres converts a stored volume for display.
func (u Units) FromCubicMetres(v float64) float64 {
	if u == UnitsImperial {
		return v * cubicFeetPerCubicMetre
	}
	return v
}

// ToCubicMetres converts an entered volume for storage.
func (u Units) ToCubicMetres(v float64) float64 {
	if u == UnitsImperial {
		return v / cubicFeetPerCubicMetre
	}
	return v
}

// Settings are the per-device user preferences.
type Settings struct {
	Language string `json:"language" validate:"oneof=pt en es"`
	Units    Units  `json:"units" validate:"oneof=metric imperial"`
	DarkMode bool   `json:"dark_mode"`
	Name     string `json:"name,omitempty" validate:"max=100"`
	Country  string `json:"country,omitempty" validate:"max=100"`
	City     string `json:"city,omitempty" validate:"max=100"`
}

// DefaultSettings matches a fresh install.
func DefaultSettings() Settings {
	return Settings{Language: "pt", Units: UnitsMetric}
}

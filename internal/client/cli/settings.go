package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/smartpool/internal/client/models"
	"github.com/dmitrijs2005/smartpool/internal/client/services"
)

// syncTimeout bounds a manual sync.
const syncTimeout = 60 * time.Second

const settingsUsage = "Usage: settings [set <name|country|city|units|dark_mode|language> <value>]"

// Sync pulls pools and analyses from the remote store.
func (a *App) Sync(ctx context.Context) error {
	a.prepare(ctx)

	ctx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()

	rep, err := services.SyncAll(ctx, a.userID, a.pools, a.analyses)
	if err != nil {
		return a.report(ctx, "sync", err)
	}

	fmt.Fprintf(a.out, "Pools: %d fetched, %d new, %d updated\n", rep.Pools.Fetched, rep.Pools.Added, rep.Pools.Updated)
	fmt.Fprintf(a.out, "Analyses: %d fetched, %d new, %d updated\n", rep.Analyses.Fetched, rep.Analyses.Added, rep.Analyses.Updated)
	return nil
}

// Settings prints the stored preferences, or with "set <field> <value>"
// changes one of them.
func (a *App) Settings(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.showSettings(ctx)
	}
	if args[0] != "set" || len(args) < 2 {
		fmt.Fprintln(a.out, settingsUsage)
		return nil
	}
	return a.setSetting(ctx, args[1], strings.Join(args[2:], " "))
}

func (a *App) showSettings(ctx context.Context) error {
	st, err := a.settings.Get(ctx)
	if err != nil {
		return a.report(ctx, "settings", err)
	}

	fmt.Fprintf(a.out, "Language:  %s\n", st.Language)
	fmt.Fprintf(a.out, "Units:     %s\n", st.Units)
	fmt.Fprintf(a.out, "Dark mode: %t\n", st.DarkMode)
	if st.Name != "" {
		fmt.Fprintf(a.out, "Name:      %s\n", st.Name)
	}
	if st.City != "" || st.Country != "" {
		fmt.Fprintf(a.out, "Location:  %s %s\n", st.City, st.Country)
	}
	return nil
}

// SetLanguage stores lang as the preferred language and switches the UI
// to it.
func (a *App) SetLanguage(ctx context.Context, lang string) error {
	return a.setSetting(ctx, "language", lang)
}

func (a *App) setSetting(ctx context.Context, field, value string) error {
	st, err := a.settings.Get(ctx)
	if err != nil {
		return a.report(ctx, "settings", err)
	}

	switch strings.ToLower(field) {
	case "name":
		st.Name = value
	case "country":
		st.Country = value
	case "city":
		st.City = value
	case "units":
		st.Units = models.Units(strings.ToLower(value))
	case "dark_mode", "dark":
		on, ok := parseSwitch(value)
		if !ok {
			fmt.Fprintln(a.out, "Dark mode must be on or off.")
			return nil
		}
		st.DarkMode = on
	case "language", "lang":
		st.Language = strings.ToLower(value)
	default:
		fmt.Fprintf(a.out, "Unknown setting: %s\n", field)
		fmt.Fprintln(a.out, settingsUsage)
		return nil
	}

	if err := a.settings.Save(ctx, st); err != nil {
		return a.report(ctx, "settings", err)
	}

	if st.Language != a.lang.Language() {
		got, err := a.lang.Set(st.Language)
		if err != nil {
			return a.report(ctx, "settings", err)
		}
		fmt.Fprintf(a.out, "Language set to %s\n", got)
		return nil
	}

	fmt.Fprintln(a.out, "Settings saved")
	return nil
}

func parseSwitch(s string) (on, ok bool) {
	switch strings.ToLower(s) {
	case "on", "yes":
		return true, true
	case "off", "no":
		return false, true
	}
	b, err := strconv.ParseBool(s)
	return b, err == nil
}

// units is the volume unit to show; metric when settings cannot be read.
func (a *App) units(ctx context.Context) models.Units {
	st, err := a.settings.Get(ctx)
	if err != nil {
		a.log.Debug(ctx, "cannot load settings, using metric", "error", err)
		return models.UnitsMetric
	}
	return st.Units
}

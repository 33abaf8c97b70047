package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/smartpool/internal/client/models"
	"github.com/dmitrijs2005/smartpool/internal/client/services"
	"github.com/dmitrijs2005/smartpool/internal/common"
	"github.com/dmitrijs2005/smartpool/internal/logging"
)

type Mode string

const (
	// ModeGuest keeps data under the guest user on this device only.
	ModeGuest Mode = "guest"
	// ModeLocal is a signed-in user without remote credentials.
	ModeLocal Mode = "local"
	// ModeSynced mirrors changes to the remote store.
	ModeSynced Mode = "synced"
)

// Language is the switchable UI language.
type Language interface {
	Set(lang string) (string, error)
	Language() string
}

type Options struct {
	Auth     services.AuthService
	Pools    services.PoolService
	Analyses services.AnalysisService
	Settings services.SettingsService
	Lang     Language
	Log      logging.Logger

	In  io.Reader
	Out io.Writer

	// SyncWait bounds how long a command waits for the start-up sync.
	SyncWait time.Duration
	// Now replaces time.Now for token expiry checks.
	Now func() time.Time
}

type App struct {
	auth     services.AuthService
	pools    services.PoolService
	analyses services.AnalysisService
	settings services.SettingsService
	lang     Language
	log      logging.Logger

	reader *bufio.Reader
	out    io.Writer

	userID  string
	session *models.Session
	Mode    Mode

	pending  []*services.SyncTask
	syncWait time.Duration
	now      func() time.Time

	// expiryShown is set once the re-login hint has been printed.
	expiryShown bool
}

func NewApp(o Options) *App {
	a := &App{
		auth:     o.Auth,
		pools:    o.Pools,
		analyses: o.Analyses,
		settings: o.Settings,
		lang:     o.Lang,
		log:      o.Log,
		reader:   bufio.NewReader(o.In),
		out:      o.Out,
		syncWait: o.SyncWait,
		now:      o.Now,
		userID:   common.GuestUserID,
	}
	if o.In == nil {
		a.reader = bufio.NewReader(os.Stdin)
	}
	if a.out == nil {
		a.out = os.Stdout
	}
	if a.log == nil {
		a.log = logging.Nop()
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.syncWait <= 0 {
		a.syncWait = 15 * time.Second
	}
	return a
}

// Run applies saved settings, starts a background pull for a signed-in
// user and serves the REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to SmartPool CLI (type 'help' for commands)")

	if st, err := a.settings.Get(ctx); err == nil {
		if _, err := a.lang.Set(st.Language); err != nil {
			a.log.Warn(ctx, "cannot switch language", "language", st.Language, "error", err)
		}
	} else {
		a.log.Warn(ctx, "cannot load settings", "error", err)
	}

	a.refresh(ctx)
	a.startBackgroundSync(ctx)

	runREPL(ctx, a, a.getStatus, a.reader)
}

// refresh reloads the session, renews a lapsed token and recomputes the
// mode. A session whose token cannot be renewed works in local mode.
func (a *App) refresh(ctx context.Context) {
	a.userID, a.session = a.auth.CurrentUser(ctx)
	a.renewToken(ctx)

	switch {
	case a.session == nil:
		a.setMode(ModeGuest)
	case !a.session.TokenValid(a.now()):
		a.setMode(ModeLocal)
	default:
		a.setMode(ModeSynced)
	}
}

func (a *App) renewToken(ctx context.Context) {
	if a.session == nil || a.session.Token == "" || a.session.TokenValid(a.now()) {
		return
	}

	sess, err := a.auth.RenewToken(ctx)
	if sess != nil {
		a.session = sess
	}
	if err == nil {
		return
	}

	a.log.Warn(ctx, "remote token not renewed", "error", err)
	if !a.expiryShown {
		a.expiryShown = true
		fmt.Fprintln(a.out, "Remote session expired. Use 'login' to sync again.")
	}
}

// prepare runs before every data command: the start-up pull must not race
// a write, and the mode must reflect the current token.
func (a *App) prepare(ctx context.Context) {
	a.settleSync(ctx)
	a.refresh(ctx)
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		fmt.Fprintf(a.out, "Switched to %s mode\n", mode)
	}
}

func (a *App) isLoggedIn() bool {
	return a.session != nil
}

func (a *App) getStatus() string {
	s := string(a.Mode)
	if a.session != nil {
		s = a.session.Email + " " + s
	}
	return fmt.Sprintf("(%s)", s)
}

func (a *App) startBackgroundSync(ctx context.Context) {
	if a.Mode != ModeSynced {
		return
	}
	a.pending = append(a.pending,
		a.pools.StartSync(ctx, a.userID),
		a.analyses.StartSync(ctx, a.userID),
	)
}

// settleSync waits for the start-up sync, if one is still pending, so
// listings show pulled records.
func (a *App) settleSync(ctx context.Context) {
	if len(a.pending) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, a.syncWait)
	defer cancel()

	for _, task := range a.pending {
		report, err := task.Wait(ctx)
		if err != nil {
			a.log.Warn(ctx, "background sync failed", "error", err)
			continue
		}
		if report.Changed() {
			fmt.Fprintf(a.out, "Synced: %d new, %d updated\n", report.Added, report.Updated)
		}
	}
	a.pending = nil
}

// report prints a user-facing error. Validation and provider errors carry
// their own message.
func (a *App) report(ctx context.Context, op string, err error) error {
	a.log.Debug(ctx, "command failed", "command", op, "error", err)
	fmt.Fprintln(a.out, "Error:", err)
	return err
}

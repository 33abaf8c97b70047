package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/smartpool/internal/client/identity"
	"github.com/dmitrijs2005/smartpool/internal/client/models"
	"github.com/dmitrijs2005/smartpool/internal/common"
	"github.com/dmitrijs2005/smartpool/internal/logging"
	"github.com/dmitrijs2005/smartpool/internal/validation"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Register: validate, create the remote account, then sign in locally.
//   - Login: validate, verify credentials remotely, store the session.
//   - Logout: drop the local session.
//   - CurrentUser: the signed-in user id, or common.GuestUserID.
//   - RenewToken: exchange a lapsed ID token for a fresh one using the
//     stored refresh token. The session itself is not extended.
//
// Without a configured identity provider Register and Login fall back to a
// local-only session keyed by the email address.
type AuthService interface {
	Register(ctx context.Context, email, password, confirm string) (*models.Session, error)
	Login(ctx context.Context, email, password string) (*models.Session, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (string, *models.Session)
	RenewToken(ctx context.Context) (*models.Session, error)
}

// Identity is the remote account provider.
type Identity interface {
	SignUp(ctx context.Context, email, password string) (*identity.Result, error)
	SignIn(ctx context.Context, email, password string) (*identity.Result, error)
	Refresh(ctx context.Context, refreshToken string) (*identity.Result, error)
}

// SessionStore keeps the single local session.
type SessionStore interface {
	SaveSession(ctx context.Context, userID, email string, cred models.Credentials) error
	UpdateCredentials(ctx context.Context, userID string, cred models.Credentials) error
	Session(ctx context.Context) (*models.Session, error)
	ClearSession(ctx context.Context) error
}

// Translator renders user-facing messages.
type Translator interface {
	T(key string) string
}

// MinPasswordLength is the shortest password accepted before contacting
// the provider.
const MinPasswordLength = 6

type authService struct {
	idp      Identity
	sessions SessionStore
	tr       Translator
	validate *validation.Validator
	log      logging.Logger
	now      func() time.Time
}

// AuthOption configures the auth service.
type AuthOption func(*authService)

// WithAuthClock replaces time.Now for token expiry checks.
func WithAuthClock(now func() time.Time) AuthOption {
	return func(a *authService) { a.now = now }
}

func NewAuthService(idp Identity, sessions SessionStore, tr Translator, log logging.Logger, opts ...AuthOption) AuthService {
	a := &authService{
		idp:      idp,
		sessions: sessions,
		tr:       tr,
		validate: validation.New(),
		log:      log.With("component", "auth"),
		now:      time.Now,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *authService) checkCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return common.NewValidationError(a.tr.T("login.error_email_required"))
	}
	if err := a.validate.Var("email", strings.TrimSpace(email), "email"); err != nil {
		return err
	}
	if len(password) < MinPasswordLength {
		return common.NewValidationError(a.tr.T("login.error_password_length"))
	}
	return nil
}

func (a *authService) Register(ctx context.Context, email, password, confirm string) (*models.Session, error) {
	if err := a.checkCredentials(email, password); err != nil {
		return nil, err
	}
	if password != confirm {
		return nil, common.NewValidationError(a.tr.T("login.error_password_mismatch"))
	}

	email = strings.TrimSpace(email)
	res, err := a.idp.SignUp(ctx, email, password)
	return a.establish(ctx, "register", email, res, err)
}

func (a *authService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	if err := a.checkCredentials(email, password); err != nil {
		return nil, err
	}

	email = strings.TrimSpace(email)
	res, err := a.idp.SignIn(ctx, email, password)
	return a.establish(ctx, "login", email, res, err)
}

// establish stores the session for a provider result. A disabled provider
// yields a local-only session with no token.
func (a *authService) establish(ctx context.Context, op, email string, res *identity.Result, err error) (*models.Session, error) {
	var (
		userID string
		cred   models.Credentials
	)

	switch {
	case err == nil:
		userID, cred = res.UserID, credentials(res)
	case errors.Is(err, common.ErrRemoteDisabled):
		userID = LocalUserID(email)
		a.log.Warn(ctx, "identity provider not configured, using local-only session", "op", op, "user_id", userID)
	default:
		a.log.Info(ctx, "authentication rejected", "op", op, "error", err)
		return nil, err
	}

	if err := a.sessions.SaveSession(ctx, userID, email, cred); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sess, err := a.sessions.Session(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.log.Info(ctx, "signed in", "op", op, "user_id", userID)
	return sess, nil
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.sessions.ClearSession(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (a *authService) CurrentUser(ctx context.Context) (string, *models.Session) {
	sess, err := a.sessions.Session(ctx)
	switch {
	case err == nil:
		return sess.UserID, sess
	case errors.Is(err, common.ErrSessionExpired):
		a.log.Info(ctx, "session expired, continuing as guest")
	case !errors.Is(err, common.ErrNoSession):
		a.log.Warn(ctx, "cannot read session, continuing as guest", "error", err)
	}
	return common.GuestUserID, nil
}

func (a *authService) RenewToken(ctx context.Context) (*models.Session, error) {
	sess, err := a.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}
	if sess.Token == "" || sess.TokenValid(a.now()) {
		return sess, nil
	}
	if sess.RefreshToken == "" {
		return sess, common.ErrTokenExpired
	}

	res, err := a.idp.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		a.log.Warn(ctx, "token renewal failed", "user_id", sess.UserID, "error", err)
		return sess, fmt.Errorf("renew token: %w: %w", common.ErrTokenExpired, err)
	}
	if res.UserID != "" && res.UserID != sess.UserID {
		a.log.Warn(ctx, "token renewal returned another user", "user_id", sess.UserID, "got", res.UserID)
		return sess, common.ErrTokenExpired
	}

	if err := a.sessions.UpdateCredentials(ctx, sess.UserID, credentials(res)); err != nil {
		return sess, fmt.Errorf("renew token: %w", err)
	}
	a.log.Info(ctx, "token renewed", "user_id", sess.UserID)
	return a.sessions.Session(ctx)
}

func credentials(res *identity.Result) models.Credentials {
	cred := models.Credentials{Token: res.Token, RefreshToken: res.RefreshToken}
	if !res.ExpiresAt.IsZero() {
		cred.TokenExpiresAt = models.NewTimestamp(res.ExpiresAt)
	}
	return cred
}

// LocalUserID derives a stable user id from an email address for
// sessions created without the identity provider.
func LocalUserID(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+strings.ToLower(strings.TrimSpace(email)))).String()
}

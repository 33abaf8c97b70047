package identity

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Error codes the client produces itself, next to the provider's codes.
const (
	CodeNetwork       = "NETWORK"
	CodeNotConfigured = "NOT_CONFIGURED"
	CodeUnknown       = "UNKNOWN"
)

// Error is a failed sign-up or sign-in. Message is safe to show to users.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

var messages = map[string]string{
	"EMAIL_EXISTS":                "An account with this email already exists.",
	"EMAIL_NOT_FOUND":             "No account found with this email address.",
	"INVALID_PASSWORD":            "Invalid password.",
	"INVALID_LOGIN_CREDENTIALS":   "Invalid email or password.",
	"USER_DISABLED":               "This account has been disabled.",
	"INVALID_EMAIL":               "Invalid email address.",
	"WEAK_PASSWORD":               "Password should be at least 6 characters.",
	"OPERATION_NOT_ALLOWED":       "This operation is not allowed.",
	"TOO_MANY_ATTEMPTS_TRY_LATER": "Too many attempts. Try again later.",
	"TOKEN_EXPIRED":               "Your session has expired. Please sign in again.",
	"INVALID_REFRESH_TOKEN":       "Your session has expired. Please sign in again.",
	"USER_NOT_FOUND":              "No account found for this session.",
}

// providerError maps a provider error code to a user-facing Error.
// Codes may carry details after " : " (e.g. "WEAK_PASSWORD : Password
// should be at least 6 characters"); only the part before it is matched.
func providerError(raw string) *Error {
	code := strings.TrimSpace(raw)
	if i := strings.Index(code, " : "); i >= 0 {
		code = strings.TrimSpace(code[:i])
	}
	if code == "" {
		return &Error{Code: CodeUnknown, Message: "Unknown error"}
	}

	if msg, ok := messages[code]; ok {
		return &Error{Code: code, Message: msg}
	}
	// Casers are stateful and not safe for concurrent use.
	title := cases.Title(language.English)
	return &Error{Code: code, Message: title.String(strings.ReplaceAll(code, "_", " "))}
}

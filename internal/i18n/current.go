package i18n

import "sync/atomic"

// Current is a Translator whose language can be switched at runtime, for
// components built once at start-up.
type Current struct {
	t atomic.Pointer[Translator]
}

func NewCurrent(lang string) *Current {
	c := &Current{}
	c.t.Store(MustNew(lang))
	return c
}

// Set switches to the closest supported match of lang and returns the
// code actually used.
func (c *Current) Set(lang string) (string, error) {
	t, err := New(lang)
	if err != nil {
		return "", err
	}
	c.t.Store(t)
	return t.Language(), nil
}

func (c *Current) Language() string {
	return c.t.Load().Language()
}

func (c *Current) T(key string) string {
	return c.t.Load().T(key)
}

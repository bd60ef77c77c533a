package i18n

import (
	"errors"
	"net/http"
	"time"
)

const preferenceMaxAge = 365 * 24 * time.Hour

var ErrInvalidTransition = errors.New("invalid locale switch transition")

// StripPrefix removes a supported locale prefix, returning "/" for a bare
// locale root.
func (l Locales) StripPrefix(path string) string {
	code, ok := l.prefix(path)
	if !ok {
		return path
	}
	rest := path[len(code)+1:]
	if rest == "" {
		return "/"
	}
	return rest
}

// SwitchPath rewrites path to target newLocale, replacing any existing
// supported prefix.
func (l Locales) SwitchPath(path, newLocale string) string {
	rest := l.StripPrefix(path)
	if rest == "/" || rest == "" {
		return "/" + newLocale
	}
	return "/" + newLocale + rest
}

func SetPreferenceCookie(w http.ResponseWriter, code string) {
	http.SetCookie(w, &http.Cookie{
		Name:     PreferenceCookie,
		Value:    code,
		Path:     "/",
		MaxAge:   int(preferenceMaxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}

type SwitchState int

const (
	Idle SwitchState = iota
	ConfirmPending
	Switching
)

func (s SwitchState) String() string {
	switch s {
	case ConfirmPending:
		return "confirm_pending"
	case Switching:
		return "switching"
	default:
		return "idle"
	}
}

// Switcher tracks a single locale change that must be confirmed before it
// takes effect. It is not safe for concurrent use.
type Switcher struct {
	locales Locales
	current string
	pending string
	state   SwitchState
}

func NewSwitcher(locales Locales, current string) *Switcher {
	if !locales.Contains(current) {
		current = locales.Default()
	}
	return &Switcher{locales: locales, current: current}
}

func (s *Switcher) State() SwitchState { return s.state }
func (s *Switcher) Current() string    { return s.current }
func (s *Switcher) Pending() string    { return s.pending }

// Request asks to switch to code. Unsupported codes and the current locale
// are ignored and report false.
func (s *Switcher) Request(code string) (bool, error) {
	if s.state != Idle {
		return false, ErrInvalidTransition
	}
	if !s.locales.Contains(code) || code == s.current {
		return false, nil
	}
	s.pending = code
	s.state = ConfirmPending
	return true, nil
}

// Confirm commits the pending switch and returns path rewritten for it.
func (s *Switcher) Confirm(path string) (string, error) {
	if s.state != ConfirmPending {
		return "", ErrInvalidTransition
	}
	s.state = Switching
	return s.locales.SwitchPath(path, s.pending), nil
}

func (s *Switcher) Cancel() error {
	if s.state != ConfirmPending {
		return ErrInvalidTransition
	}
	s.pending = ""
	s.state = Idle
	return nil
}

// Done marks the navigation finished; the pending locale becomes current.
func (s *Switcher) Done() error {
	if s.state != Switching {
		return ErrInvalidTransition
	}
	s.current = s.pending
	s.pending = ""
	s.state = Idle
	return nil
}

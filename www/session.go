package www

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

const (
	sessionName    = "spotprice"
	flashInfoKey   = "info"
	flashErrorKey  = "error"
	sessionMaxAge  = 3600
	sessionKeySize = 32
)

// newSessionStore returns a cookie store signed with key. Without a key a
// random one is generated, so flash messages don't survive a restart.
func newSessionStore(key string) (*sessions.CookieStore, error) {
	k := []byte(key)
	if len(k) == 0 {
		k = securecookie.GenerateRandomKey(sessionKeySize)
		if k == nil {
			return nil, errors.New("unable to generate session key")
		}
	}
	store := sessions.NewCookieStore(k)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store, nil
}

func (s *Server) addFlash(w http.ResponseWriter, r *http.Request, key, message string) {
	session, err := s.sessions.Get(r, sessionName)
	if err != nil {
		// A cookie signed with an old key; a fresh session is still returned.
		s.logger.Debug("invalid session cookie", slog.Any("error", err))
	}
	session.AddFlash(message, key)
	if err := session.Save(r, w); err != nil {
		s.logger.Error("saving session failed", slog.Any("error", err))
	}
}

type flashes struct {
	Info   []string
	Errors []string
}

// popFlashes reads and clears the flash messages. Must be called before the body is written.
func (s *Server) popFlashes(w http.ResponseWriter, r *http.Request) flashes {
	session, err := s.sessions.Get(r, sessionName)
	if err != nil {
		s.logger.Debug("invalid session cookie", slog.Any("error", err))
	}

	var f flashes
	for _, v := range session.Flashes(flashInfoKey) {
		if msg, ok := v.(string); ok {
			f.Info = append(f.Info, msg)
		}
	}
	for _, v := range session.Flashes(flashErrorKey) {
		if msg, ok := v.(string); ok {
			f.Errors = append(f.Errors, msg)
		}
	}

	if len(f.Info)+len(f.Errors) > 0 {
		if err := session.Save(r, w); err != nil {
			s.logger.Error("saving session failed", slog.Any("error", err))
		}
	}
	return f
}

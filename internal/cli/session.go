package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/joacominatel/studiodb/internal/app"
	"github.com/joacominatel/studiodb/internal/config"
	"github.com/joacominatel/studiodb/internal/database/sqlite"
	"github.com/joacominatel/studiodb/internal/history"
	"github.com/joacominatel/studiodb/internal/logging"
)

const logFile = "studiodb.log"

var errNoTarget = errors.New("no installation given: pass --root or --db, or open one first")

// session is the service and its supporting state for one command run.
type session struct {
	store  *config.Store
	svc    *app.Service
	log    logrus.FieldLogger
	closer io.Closer
}

// newSession loads the configuration and builds the service. The browser owns
// the terminal, so it logs to a file in the configuration directory instead
// of stderr.
func newSession(g *globals, toFile bool) (*session, error) {
	store, err := config.Load(g.configDir)
	if err != nil {
		return nil, &app.ErrConfig{Op: "load", Cause: err}
	}
	prefs := store.Config().Preferences

	level := "warn"
	if g.verbose {
		level = "debug"
	}

	s := &session{store: store}
	if toFile {
		if !g.verbose {
			level = prefs.LogLevel
		}
		log, closer, err := logging.NewFile(level, filepath.Dir(store.Path()), logFile)
		if err != nil {
			return nil, err
		}
		s.log, s.closer = log, closer
	} else {
		s.log = logging.New(level, os.Stderr)
	}

	hist := history.NewStore(store.Config().Installations, store)
	s.svc = app.NewService(sqlite.Open, hist, s.log, app.Options{
		ReadOnly:     g.readOnly || prefs.ReadOnly,
		QueryTimeout: prefs.QueryTimeout,
		PageSize:     prefs.PageSize,
	})
	return s, nil
}

// open connects to the database named by the flags, falling back to the most
// recently opened installation.
func (s *session) open(ctx context.Context, g *globals) (string, error) {
	switch {
	case g.db != "":
		if _, err := s.svc.OpenRecent(ctx, g.db); err != nil {
			return "", err
		}
		path, _ := s.svc.Connected()
		return path, nil
	case g.root != "":
		return s.svc.OpenInstallation(ctx, g.root)
	}

	recent := s.svc.RecentInstallations()
	if len(recent) == 0 {
		return "", errNoTarget
	}
	s.log.WithField("root", recent[0].Root).Debug("using most recent installation")
	if _, err := s.svc.OpenRecent(ctx, recent[0].DBPath); err != nil {
		return "", err
	}
	return recent[0].DBPath, nil
}

func (s *session) close() {
	if err := s.svc.Close(); err != nil {
		s.log.WithError(err).Warn("close database")
	}
	if s.closer != nil {
		_ = s.closer.Close()
	}
}

// withDatabase runs fn against the opened database and always closes it.
func withDatabase(ctx context.Context, g *globals, fn func(s *session, path string) error) error {
	s, err := newSession(g, false)
	if err != nil {
		return err
	}
	defer s.close()

	path, err := s.open(ctx, g)
	if err != nil {
		return err
	}
	return fn(s, path)
}

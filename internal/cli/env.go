package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/api"
	"github.com/roach88/storefront/internal/cart"
	"github.com/roach88/storefront/internal/config"
	"github.com/roach88/storefront/internal/store"
)

const (
	dataDirName        = "storefront"
	defaultDBName      = "storefront.db"
	defaultJournalName = "journal.db"
)

// session carries what a command needs at runtime. Storage and the API
// client are opened lazily so that commands only touch what they use.
type session struct {
	cmd    *cobra.Command
	cfg    config.Config
	out    *OutputFormatter
	logger *slog.Logger

	db     *store.Store
	slots  store.Slots
	client *api.Client
}

// newSession loads config, applies flag overrides and sets up logging.
func newSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, out.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Storage.Path = opts.Database
	}
	if opts.APIURL != "" {
		cfg.API.BaseURL = opts.APIURL
	}

	return &session{
		cmd:    cmd,
		cfg:    cfg,
		out:    out,
		logger: newLogger(cmd.ErrOrStderr(), cfg.Log.Level, opts.Verbose),
	}, nil
}

func newLogger(w io.Writer, level string, verbose bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// Close releases whatever the session opened.
func (s *session) Close() {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Warn("close database", "error", err)
		}
	}
}

// ctx returns the command's context.
func (s *session) ctx() context.Context {
	if ctx := s.cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// callCtx bounds one backend call by the configured timeout.
func (s *session) callCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(s.ctx(), s.cfg.API.CallTimeout)
}

// paths returns the SQLite database path and, for the file backend, the
// directory cart slots are written to. Unset paths default to the user's
// XDG data directory.
func (s *session) paths() (dbPath, slotDir string, err error) {
	switch s.cfg.Storage.Backend {
	case config.BackendFile:
		dir := s.cfg.Storage.Path
		if dir == "" {
			dir = filepath.Join(xdg.DataHome, dataDirName)
		}
		return filepath.Join(dir, defaultJournalName), dir, nil
	default:
		if s.cfg.Storage.Path != "" {
			return s.cfg.Storage.Path, "", nil
		}
		path, err := xdg.DataFile(filepath.Join(dataDirName, defaultDBName))
		if err != nil {
			return "", "", fmt.Errorf("locate data dir: %w", err)
		}
		return path, "", nil
	}
}

// store opens the SQLite database that holds the journal, and the cart when
// storage.backend is sqlite.
func (s *session) store() (*store.Store, error) {
	if s.db != nil {
		return s.db, nil
	}
	dbPath, _, err := s.paths()
	if err != nil {
		return nil, s.out.Fail(ExitCommandError, ErrCodeStorage, "failed to locate storage", err)
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, s.out.Fail(ExitCommandError, ErrCodeStorage, "failed to create storage directory", err)
		}
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, s.out.Fail(ExitCommandError, ErrCodeStorage, "failed to open database", err)
	}
	s.logger.Debug("opened database", "path", dbPath)
	s.db = db
	return db, nil
}

// cartSlots returns the durable slot store for the configured backend.
func (s *session) cartSlots() (store.Slots, error) {
	if s.slots != nil {
		return s.slots, nil
	}
	_, dir, err := s.paths()
	if err != nil {
		return nil, s.out.Fail(ExitCommandError, ErrCodeStorage, "failed to locate storage", err)
	}
	if dir == "" {
		db, err := s.store()
		if err != nil {
			return nil, err
		}
		s.slots = db
		return s.slots, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, s.out.Fail(ExitCommandError, ErrCodeStorage, "failed to create storage directory", err)
	}
	s.logger.Debug("using file slots", "dir", dir)
	s.slots = store.NewFileSlots(osfs.New(dir))
	return s.slots, nil
}

// cart loads the persisted cart.
func (s *session) cart() (*cart.Store, error) {
	slots, err := s.cartSlots()
	if err != nil {
		return nil, err
	}
	opts := []cart.Option{
		cart.WithSlotKey(s.cfg.Storage.Slot),
		cart.WithLogger(s.logger),
	}
	if s.cfg.Cart.StrictQuantities {
		opts = append(opts, cart.WithStrictQuantities())
	}
	return cart.New(s.ctx(), slots, opts...), nil
}

// api returns the backend client.
func (s *session) api() (*api.Client, error) {
	if s.client != nil {
		return s.client, nil
	}
	c, err := api.New(s.cfg.API.BaseURL, api.WithLogger(s.logger))
	if err != nil {
		return nil, s.out.Fail(ExitCommandError, ErrCodeConfig, "invalid API base URL", err)
	}
	s.client = c
	return c, nil
}

// backendError reports a failed backend call. Missing resources are
// distinguished from everything else, which is worth retrying.
func (s *session) backendError(what string, err error) error {
	if errors.Is(err, api.ErrNotFound) {
		return s.out.Fail(ExitCommandError, ErrCodeNotFound, what+": not found", err)
	}
	return s.out.Fail(ExitCommandError, ErrCodeBackend, what+temporaryNote(err), err)
}

// temporaryNote marks backend responses that may succeed if retried.
func temporaryNote(err error) string {
	if ae, ok := api.IsError(err); ok && ae.Temporary() {
		return ", temporary"
	}
	return ""
}

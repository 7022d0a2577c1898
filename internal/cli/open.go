package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/andrewferrier/memy/internal/config"
	"github.com/andrewferrier/memy/internal/denylist"
	"github.com/andrewferrier/memy/internal/importer"
	"github.com/andrewferrier/memy/internal/store"
)

// session is the configuration and open store shared by the data commands.
type session struct {
	cfg   *config.Config
	deny  *denylist.Matcher
	store *store.Store
}

func (s *session) Close() {
	if s.store != nil {
		s.store.Close()
	}
}

// openSession loads configuration, compiles the denylist and opens the
// store. A store created by this call is seeded from other tools when
// import_on_first_use is set.
func (o *RootOptions) openSession(ctx context.Context) (*session, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	deny, err := denylist.Compile(cfg.Denylist)
	if err != nil {
		return nil, &config.Error{Field: "denylist", Message: "invalid pattern", Err: err}
	}

	dir, fromEnv := config.DBDir()
	if !fromEnv {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	st, err := store.Open(dir, store.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}

	if st.Created() && cfg.ImportOnFirstUse {
		o.logger.Info("New database created, importing from other tools", "path", st.Path())
		importer.New(st, o.importSources(),
			importer.WithClock(o.now),
			importer.WithLogger(o.logger),
		).Run(ctx)
	}

	return &session{cfg: cfg, deny: deny, store: st}, nil
}

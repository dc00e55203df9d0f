package main

import (
	"context"
	"fmt"
	"io"

	"github.com/goliatone/go-prefs"
	"github.com/goliatone/go-prefs/internal/config"
	"github.com/goliatone/go-prefs/pkg/format"
	"github.com/goliatone/go-prefs/pkg/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type app struct {
	v          *viper.Viper
	configPath string
	out        io.Writer
	errOut     io.Writer
}

func newRootCommand(out, errOut io.Writer) *cobra.Command {
	a := &app{v: config.New(), out: out, errOut: errOut}

	cmd := &cobra.Command{
		Use:   "prefsctl",
		Short: "Inspect and edit a stored preferences document",
		Long: `prefsctl reads and rewrites the single document a prefs engine persists.

The store is selected by configuration file, PREFS_* environment variables or
flags, e.g.:
  prefsctl show --store-path ~/.config/game/prefs.json
  PREFS_STORE_DRIVER=sqlite PREFS_STORE_PATH=game.db prefsctl get volume`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Configuration file (yaml, json or toml)")
	flags.String("store-driver", "", "Store driver: file, bolt, sqlite, redis")
	flags.String("store-path", "", "Document file or database path")
	flags.String("store-key", "", "Document key inside bolt, sqlite or redis")
	flags.String("format", "", "Document format: json or yaml")
	_ = a.v.BindPFlag("store.driver", flags.Lookup("store-driver"))
	_ = a.v.BindPFlag("store.path", flags.Lookup("store-path"))
	_ = a.v.BindPFlag("store.key", flags.Lookup("store-key"))
	_ = a.v.BindPFlag("format", flags.Lookup("format"))

	cmd.AddCommand(
		newShowCommand(a),
		newGetCommand(a),
		newSetCommand(a),
		newDeleteCommand(a),
	)
	return cmd
}

// session is one open store plus the format it is read with.
type session struct {
	cfg   config.Config
	store store.Store
	codec format.Format
}

func (a *app) open(ctx context.Context) (*session, error) {
	cfg, err := config.LoadWith(a.v, a.configPath)
	if err != nil {
		return nil, err
	}
	codec, err := cfg.DocumentFormat()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, store: st, codec: codec}, nil
}

func (s *session) Close() error {
	return store.Close(s.store)
}

// read returns the stored document, or an empty one when nothing is stored.
// Unlike the engine, a malformed document is an error here.
func (s *session) read(ctx context.Context) (*prefs.Document, bool, error) {
	data, ok, err := s.store.Load(ctx)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return prefs.NewDocument(s.cfg.Version), false, nil
	}
	doc, err := prefs.Deserialize(s.codec, data)
	if err != nil {
		return nil, true, err
	}
	return doc, true, nil
}

func (s *session) write(ctx context.Context, doc *prefs.Document) error {
	data, err := doc.Encode(s.codec)
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, data); err != nil {
		return fmt.Errorf("save %s: %w", store.Describe(s.store), err)
	}
	return nil
}

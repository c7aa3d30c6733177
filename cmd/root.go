// Package cmd provides the vecmatch CLI commands.
package cmd

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/viant/vecmatch/config"
	"github.com/viant/vecmatch/engine"
	"github.com/viant/vecmatch/gallery"
)

// options carries persistent flag values and the loaded configuration to
// every subcommand.
type options struct {
	configPath string
	galleryDSN string
	logLevel   string

	cfg *config.Config
}

// NewRootCmd builds the vecmatch command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "vecmatch",
		Short: "Rank gallery identities against a query embedding",
		Long: `vecmatch keeps a gallery of labeled embedding vectors and ranks its labels
against a query vector by Euclidean (nearest sample) or Mahalanobis (per-label
Gaussian) distance.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	flags.StringVar(&opts.galleryDSN, "gallery", "", "gallery SQLite database (overrides config)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	root.AddCommand(
		newEnrollCmd(opts),
		newLabelsCmd(opts),
		newRemoveCmd(opts),
		newStatsCmd(opts),
		newRankCmd(opts),
	)
	return root
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

func (o *options) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.galleryDSN != "" {
		cfg.Gallery.DSN = o.galleryDSN
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	o.cfg = cfg
	slog.SetDefault(cfg.Logger(cmd.ErrOrStderr()))
	return nil
}

// openStore opens the configured gallery. The returned db must be closed by
// the caller.
func (o *options) openStore(ctx context.Context) (*gallery.Store, *sql.DB, error) {
	if err := engine.RegisterVectorFunctions(); err != nil {
		return nil, nil, fmt.Errorf("register vector functions: %w", err)
	}
	db, err := engine.Open(o.cfg.Gallery.DSN)
	if err != nil {
		return nil, nil, err
	}
	store, err := gallery.NewStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	slog.Debug("gallery opened", slog.String("dsn", o.cfg.Gallery.DSN))
	return store, db, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

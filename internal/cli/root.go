// Package cli implements pulsectl, the operator command line for schema
// migrations and demo data.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"pulse/internal/bootstrap"
	"pulse/internal/config"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// RootOptions holds global flags and the runtime hooks shared by all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	LoadConfig func() (*config.Config, error)
	Connect    func(ctx context.Context, cfg *config.Config, opts bootstrap.Options) (*gorm.DB, error)
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the pulsectl root command bound to the real config
// loader and database.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWith(&RootOptions{
		LoadConfig: config.LoadConfig,
		Connect: func(ctx context.Context, cfg *config.Config, opts bootstrap.Options) (*gorm.DB, error) {
			db, _, err := bootstrap.InitRuntime(ctx, cfg, opts)
			return db, err
		},
	})
}

// NewRootCommandWith builds the command tree around opts.
func NewRootCommandWith(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pulsectl",
		Short: "Pulse operator tooling",
		Long:  "Schema migrations and demo data for the Pulse social feed store.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// open loads the config and connects to the store.
func (o *RootOptions) open(ctx context.Context, bo bootstrap.Options) (*config.Config, *gorm.DB, error) {
	cfg, err := o.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	db, err := o.Connect(ctx, cfg, bo)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	return cfg, db, nil
}

// emit writes data as indented JSON, or text via the fallback when the text
// format is selected.
func (o *RootOptions) emit(w io.Writer, data interface{}, text func(io.Writer)) error {
	if o.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	text(w)
	return nil
}

// cmd/allformats is the All Formats API server and catalog CLI
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RynoXLI/allformats/internal/catalog"
	"github.com/RynoXLI/allformats/internal/config"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree; each invocation gets its own viper
// instance so flags and environment never leak between runs
func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:   "allformats",
		Short: "Directory of image and video format specifications",
		Long: `All Formats serves a read-only catalog of platform content formats
(dimensions, aspect ratios, file types, safe zones) over HTTP, and can
query the same catalog from the command line.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.toml or $HOME/.allformats/config.toml)")

	load := func() (*config.Config, error) {
		if cfgFile != "" {
			v.SetConfigFile(cfgFile)
		}
		cfg, err := config.Load(v)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}

	root.AddCommand(
		newServeCmd(v, load),
		newFormatsCmd(load),
		newFormatCmd(load),
		newPlatformsCmd(load),
		newCategoriesCmd(load),
	)
	return root
}

// newLogger builds the process logger from the logging config
func newLogger(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler), nil
}

// loadCatalog reads the catalog at path, or the embedded one when path is empty
func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		cat, err := catalog.Default()
		if err != nil {
			return nil, fmt.Errorf("failed to load embedded catalog: %w", err)
		}
		return cat, nil
	}
	cat, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return cat, nil
}

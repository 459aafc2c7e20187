package main

import (
	"context"
	"fmt"
	"os"

	"github.com/marmos91/filebridge/internal/logger"
	"github.com/marmos91/filebridge/pkg/cmis"
	"github.com/marmos91/filebridge/pkg/config"
	"github.com/marmos91/filebridge/pkg/repository"
	"github.com/spf13/cobra"
)

var (
	configFile   string
	logLevel     string
	outputFormat string
	username     string
	password     string
)

var rootCmd = &cobra.Command{
	Use:   "filebridge",
	Short: "Serve local directory trees as content repositories",
	Long: `FileBridge exposes directories of the local filesystem as repositories of
folders and documents, with per-repository read-only and read-write users
and a catalog of custom document and folder types.

Commands:
  init     Write a sample configuration file
  serve    Load the configuration and run until interrupted
  ls       List the children of a folder
  tree     Print the descendants of a folder
  query    Run an in_folder query
  types    Print the type hierarchy`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config file (default: $XDG_CONFIG_HOME/filebridge/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format (table, json, yaml)")
}

// loadConfig loads the configuration and applies the logging section.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	rot := logger.Rotation{
		MaxSizeMB:  cfg.Logging.Rotation.MaxSizeMB,
		MaxAgeDays: cfg.Logging.Rotation.MaxAgeDays,
		MaxBackups: cfg.Logging.Rotation.MaxBackups,
		Compress:   cfg.Logging.Rotation.Compress,
	}
	if err := logger.ConfigureWithRotation(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, rot); err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}
	return cfg, nil
}

// session loads the runtime, authenticates the --user flags and returns the
// named repository together with the caller's call context.
func session(ctx context.Context, repoID string) (*config.Runtime, *repository.Repository, *cmis.CallContext, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	rt, err := config.BuildRuntime(ctx, cfg, nil)
	if err != nil {
		return nil, nil, nil, err
	}

	cc := cmis.NewCallContext(ctx, username, password)
	if _, err := rt.Users.Authenticate(cc); err != nil {
		_ = rt.Close()
		return nil, nil, nil, err
	}

	repo, err := rt.Registry.Get(repoID)
	if err != nil {
		_ = rt.Close()
		return nil, nil, nil, err
	}
	return rt, repo, cc, nil
}

func addUserFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&username, "user", "u", "", "login user name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "login password")
	_ = cmd.MarkFlagRequired("user")
}

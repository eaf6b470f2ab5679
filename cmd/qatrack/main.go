package main

import (
	"fmt"
	"os"

	"github.com/fentz26/qatrack/internal/config"
	"github.com/fentz26/qatrack/internal/logging"
	"github.com/fentz26/qatrack/internal/models"
	"github.com/fentz26/qatrack/internal/registry"
	"github.com/fentz26/qatrack/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "qatrack",
	Short: "qatrack - Module Quality Dashboard",
	Long:  `qatrack tracks the QA status of named modules across deployment environments (QA, SAT, Prod), with quick status updates, promotion between environments, and JSON import/export.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Verbose = true
		}
		logging.Setup(cfg.Verbose)

		if envFlag != "" {
			cfg.Environment = envFlag
		}
		if !models.Environment(cfg.Environment).Valid() {
			return fmt.Errorf("unknown environment %q (valid: QA, SAT, Prod)", cfg.Environment)
		}
		return nil
	},
	SilenceUsage: true,
	// No RunE - defaults to showing help when no subcommand is provided
}

var (
	cfg     config.Config
	cfgFile string
	envFlag string
	verbose bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.qatrack/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFlag, "env", "", "environment context (QA, SAT, Prod)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(moduleCmd)
	rootCmd.AddCommand(promoteCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(releaseCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(tuiCmd)
}

// currentEnv returns the validated environment context.
func currentEnv() models.Environment {
	return models.Environment(cfg.Environment)
}

// openRegistry opens the store and loads the module collection. The caller
// closes the returned store.
func openRegistry() (*registry.Registry, *store.Store, error) {
	st, err := store.New(cfg.StorePath)
	if err != nil {
		return nil, nil, err
	}
	reg := registry.New(st)
	if err := reg.Load(); err != nil {
		st.Close()
		return nil, nil, err
	}
	return reg, st, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

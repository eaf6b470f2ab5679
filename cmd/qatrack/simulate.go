package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fentz26/qatrack/internal/simulator"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Apply random status changes on a fixed interval",
	Long:  `Runs until interrupted. Each tick moves one random module in the current environment to a different random status through the normal quick-update path, accepting every prompt default.`,
	RunE:  runSimulate,
}

var simulateInterval time.Duration

func init() {
	simulateCmd.Flags().DurationVar(&simulateInterval, "interval", 0, "Tick interval (default from config)")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	interval := simulateInterval
	if interval <= 0 {
		interval = cfg.SimulatorInterval
	}

	reg, st, err := openRegistry()
	if err != nil {
		return err
	}
	defer st.Close()

	sim := simulator.New(reg, currentEnv(), interval)
	sim.Start()
	defer sim.Stop()

	fmt.Printf("Simulating %s every %s. Ctrl+C to stop.\n", currentEnv(), interval)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	return nil
}

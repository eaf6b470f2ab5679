package main

import (
	"github.com/fentz26/qatrack/internal/tui"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive dashboard",
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	reg, st, err := openRegistry()
	if err != nil {
		return err
	}
	defer st.Close()

	return tui.New(reg, st, currentEnv()).Run()
}

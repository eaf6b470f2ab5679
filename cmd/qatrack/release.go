package main

import (
	"encoding/json"
	"fmt"

	"github.com/fentz26/qatrack/internal/query"
	"github.com/fentz26/qatrack/internal/report"
	"github.com/fentz26/qatrack/internal/store"
	"github.com/spf13/cobra"
)

var releaseCmd = &cobra.Command{
	Use:   "release [name]",
	Short: "Show or set the release label",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRelease,
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show aggregate counts and pass rate for the current environment",
	RunE:  runSummary,
}

var summaryJSON bool

func init() {
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "Output JSON")
}

func runRelease(cmd *cobra.Command, args []string) error {
	st, err := store.New(cfg.StorePath)
	if err != nil {
		return err
	}
	defer st.Close()

	if len(args) == 0 {
		name, err := st.Release()
		if err != nil {
			return err
		}
		fmt.Println(name)
		return nil
	}

	if err := st.SetRelease(args[0]); err != nil {
		return err
	}
	fmt.Printf("Release set to %s\n", args[0])
	return nil
}

func runSummary(cmd *cobra.Command, args []string) error {
	reg, st, err := openRegistry()
	if err != nil {
		return err
	}
	defer st.Close()

	scoped := query.Filter(reg.All(), query.Options{Environment: currentEnv()})
	s := report.Summarize(scoped)

	if summaryJSON {
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Environment:         %s\n", currentEnv())
	fmt.Printf("Total modules:       %d\n", s.Total)
	fmt.Printf("Passed:              %d\n", s.Passed)
	fmt.Printf("Failed:              %d\n", s.Failed)
	fmt.Printf("In Progress/Blocked: %d\n", s.InProgressOrBlocked)
	fmt.Printf("Pass rate:           %d%%\n", s.PassRate)
	return nil
}

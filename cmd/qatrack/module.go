package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fentz26/qatrack/internal/models"
	"github.com/fentz26/qatrack/internal/policy"
	"github.com/fentz26/qatrack/internal/query"
	"github.com/fentz26/qatrack/internal/registry"
	"github.com/spf13/cobra"
)

var moduleCmd = &cobra.Command{
	Use:   "module",
	Short: "Manage modules",
}

var moduleAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new module in the current environment",
	RunE:  runModuleAdd,
}

var moduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List modules in the current environment",
	RunE:  runModuleList,
}

var moduleShowCmd = &cobra.Command{
	Use:   "show [module-id]",
	Short: "Show module details",
	Args:  cobra.ExactArgs(1),
	RunE:  runModuleShow,
}

var moduleEditCmd = &cobra.Command{
	Use:   "edit [module-id]",
	Short: "Edit module fields directly",
	Args:  cobra.ExactArgs(1),
	RunE:  runModuleEdit,
}

var moduleSetStatusCmd = &cobra.Command{
	Use:   "set-status [module-id] [status]",
	Short: "Quick status update with interactive prompts",
	Long:  `Moves a module to a new status. Failed and Blocked transitions prompt for a replacement reason; Failed additionally prompts for a new failure count, suggesting current+1.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runModuleSetStatus,
}

var moduleRmCmd = &cobra.Command{
	Use:   "rm [module-id]",
	Short: "Delete a module",
	Args:  cobra.ExactArgs(1),
	RunE:  runModuleRm,
}

var moduleChannelCmd = &cobra.Command{
	Use:   "channel [module-id] [channel] [on|off]",
	Short: "Toggle a channel availability flag",
	Args:  cobra.ExactArgs(3),
	RunE:  runModuleChannel,
}

var (
	moduleName     string
	moduleStatus   string
	moduleReason   string
	moduleFailures int
	listStatus     string
	listSearch     string
	listSort       string
	listJSON       bool
)

func init() {
	moduleCmd.AddCommand(moduleAddCmd, moduleListCmd, moduleShowCmd, moduleEditCmd, moduleSetStatusCmd, moduleRmCmd, moduleChannelCmd)

	moduleAddCmd.Flags().StringVar(&moduleName, "name", "", "Module name (required)")
	moduleAddCmd.Flags().StringVar(&moduleStatus, "status", string(models.StatusInProgress), "Initial status")
	moduleAddCmd.Flags().StringVar(&moduleReason, "reason", "", "Failure/blocked reason")
	moduleAddCmd.Flags().IntVar(&moduleFailures, "failures", 0, "Failure count")
	moduleAddCmd.MarkFlagRequired("name")

	moduleListCmd.Flags().StringVar(&listStatus, "status", query.StatusAll, "Filter by status")
	moduleListCmd.Flags().StringVar(&listSearch, "search", "", "Case-insensitive name search")
	moduleListCmd.Flags().StringVar(&listSort, "sort", "", "Sort key (name_asc, name_desc, status, failures_desc)")
	moduleListCmd.Flags().BoolVar(&listJSON, "json", false, "Output JSON")

	moduleEditCmd.Flags().StringVar(&moduleName, "name", "", "New name")
	moduleEditCmd.Flags().StringVar(&moduleStatus, "status", "", "New status")
	moduleEditCmd.Flags().StringVar(&moduleReason, "reason", "", "New reason")
	moduleEditCmd.Flags().IntVar(&moduleFailures, "failures", 0, "New failure count")
}

func runModuleAdd(cmd *cobra.Command, args []string) error {
	status := models.Status(moduleStatus)
	if !status.Valid() {
		return fmt.Errorf("unknown status %q (valid: Passed, Failed, In Progress, Blocked)", moduleStatus)
	}

	reg, st, err := openRegistry()
	if err != nil {
		return err
	}
	defer st.Close()

	m, err := reg.Add(currentEnv(), registry.Draft{
		Name:     moduleName,
		Status:   status,
		Reason:   moduleReason,
		Failures: moduleFailures,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Created module %s (%s) in %s\n", m.Name, truncateID(m.ID), m.Environment)
	return nil
}

func runModuleList(cmd *cobra.Command, args []string) error {
	reg, st, err := openRegistry()
	if err != nil {
		return err
	}
	defer st.Close()

	mods := query.Filter(reg.All(), query.Options{
		Environment: currentEnv(),
		Status:      listStatus,
		Search:      listSearch,
		Sort:        listSort,
	})

	if listJSON {
		data, err := json.MarshalIndent(mods, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if len(mods) == 0 {
		fmt.Println("No modules found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tREASON\tFAILURES\tUPDATED")
	for _, m := range mods {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			truncateID(m.ID),
			truncate(m.Name, 40),
			m.Status,
			truncate(orDash(m.Reason), 40),
			m.Failures,
			m.LastUpdated.Local().Format("Jan 2 15:04"),
		)
	}
	w.Flush()
	return nil
}

func runModuleShow(cmd *cobra.Command, args []string) error {
	reg, st, err := openRegistry()
	if err != nil {
		return err
	}
	defer st.Close()

	m, ok := reg.Get(args[0])
	if !ok {
		return fmt.Errorf("no module with id %s", args[0])
	}

	fmt.Printf("ID:          %s\n", m.ID)
	fmt.Printf("Name:        %s\n", m.Name)
	fmt.Printf("Environment: %s\n", m.Environment)
	fmt.Printf("Status:      %s\n", m.Status)
	fmt.Printf("Reason:      %s\n", orDash(m.Reason))
	fmt.Printf("Failures:    %d\n", m.Failures)
	for _, name := range models.ChannelNames {
		state := "off"
		if m.Channels[name] {
			state = "on"
		}
		fmt.Printf("Channel %-6s %s\n", name+":", state)
	}
	fmt.Printf("Updated:     %s\n", m.LastUpdated.Local().Format("Jan 2 2006 15:04:05"))
	return nil
}

func runModuleEdit(cmd *cobra.Command, args []string) error {
	reg, st, err := openRegistry()
	if err != nil {
		return err
	}
	defer st.Close()

	if _, ok := reg.Get(args[0]); !ok {
		fmt.Printf("No module with id %s\n", args[0])
		return nil
	}

	var patch registry.Patch
	if cmd.Flags().Changed("name") {
		patch.Name = &moduleName
	}
	if cmd.Flags().Changed("status") {
		status := models.Status(moduleStatus)
		if !status.Valid() {
			return fmt.Errorf("unknown status %q (valid: Passed, Failed, In Progress, Blocked)", moduleStatus)
		}
		patch.Status = &status
	}
	if cmd.Flags().Changed("reason") {
		patch.Reason = &moduleReason
	}
	if cmd.Flags().Changed("failures") {
		patch.Failures = &moduleFailures
	}

	if err := reg.Update(args[0], patch); err != nil {
		return err
	}
	fmt.Printf("Updated module %s\n", truncateID(args[0]))
	return nil
}

func runModuleSetStatus(cmd *cobra.Command, args []string) error {
	target := models.Status(args[1])
	if !target.Valid() {
		return fmt.Errorf("unknown status %q (valid: Passed, Failed, In Progress, Blocked)", args[1])
	}

	reg, st, err := openRegistry()
	if err != nil {
		return err
	}
	defer st.Close()

	m, ok := reg.Get(args[0])
	if !ok {
		fmt.Printf("No module with id %s\n", args[0])
		return nil
	}
	if m.Status == target {
		fmt.Printf("%s is already %s\n", m.Name, target)
		return nil
	}

	if err := policy.Apply(reg, m.ID, target, newStdinPrompter()); err != nil {
		return err
	}
	fmt.Printf("%s set to %s\n", m.Name, target)
	return nil
}

func runModuleRm(cmd *cobra.Command, args []string) error {
	reg, st, err := openRegistry()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := reg.Remove(args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted module %s\n", truncateID(args[0]))
	return nil
}

func runModuleChannel(cmd *cobra.Command, args []string) error {
	channel := args[1]
	known := false
	for _, name := range models.ChannelNames {
		if name == channel {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("unknown channel %q (valid: voice, sms, chat, email)", channel)
	}

	var enabled bool
	switch args[2] {
	case "on":
		enabled = true
	case "off":
		enabled = false
	default:
		return fmt.Errorf("channel state must be on or off, got %q", args[2])
	}

	reg, st, err := openRegistry()
	if err != nil {
		return err
	}
	defer st.Close()

	m, ok := reg.Get(args[0])
	if !ok {
		fmt.Printf("No module with id %s\n", args[0])
		return nil
	}

	channels := m.Channels
	channels[channel] = enabled
	if err := reg.Update(m.ID, registry.Patch{Channels: channels}); err != nil {
		return err
	}
	fmt.Printf("%s channel %s set %s\n", m.Name, channel, args[2])
	return nil
}

// --- Helpers ---

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func truncateID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

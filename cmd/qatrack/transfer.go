package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the full module collection as pretty-printed JSON",
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace the module collection from a JSON file",
	Long:  `The file must contain a JSON array. The collection is replaced verbatim with no per-record validation; importing something other than an array changes nothing.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var exportOut string

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file (default qatrack_backup_<date>.json)")
}

func runExport(cmd *cobra.Command, args []string) error {
	reg, st, err := openRegistry()
	if err != nil {
		return err
	}
	defer st.Close()

	data, err := reg.ExportJSON()
	if err != nil {
		return err
	}

	out := exportOut
	if out == "" {
		out = fmt.Sprintf("qatrack_backup_%s.json", time.Now().Format("2006-01-02"))
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	fmt.Printf("Exported %d bytes to %s\n", len(data), out)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read import: %w", err)
	}

	reg, st, err := openRegistry()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := reg.ImportJSON(data); err != nil {
		return err
	}

	fmt.Printf("Imported %d module(s)\n", len(reg.All()))
	return nil
}

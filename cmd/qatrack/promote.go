package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fentz26/qatrack/internal/models"
	"github.com/fentz26/qatrack/internal/promote"
	"github.com/spf13/cobra"
)

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Copy modules from another environment into this one",
	Long:  `Promotion copies modules by name. A module qualifies when no module in the target environment has the same name; the copy always starts as In Progress with a clean reason and failure count. The source is never changed.`,
}

var promoteCandidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "List modules that could be promoted",
	RunE:  runPromoteCandidates,
}

var promoteApplyCmd = &cobra.Command{
	Use:   "apply [name...]",
	Short: "Promote the named modules (all candidates when no names given)",
	RunE:  runPromoteApply,
}

var (
	promoteFrom string
	promoteTo   string
)

func init() {
	promoteCmd.AddCommand(promoteCandidatesCmd, promoteApplyCmd)

	for _, c := range []*cobra.Command{promoteCandidatesCmd, promoteApplyCmd} {
		c.Flags().StringVar(&promoteFrom, "from", "", "Source environment (required)")
		c.Flags().StringVar(&promoteTo, "to", "", "Target environment (default: current context)")
		c.MarkFlagRequired("from")
	}
}

func promoteEnvs() (src, tgt models.Environment, err error) {
	src = models.Environment(promoteFrom)
	if !src.Valid() {
		return "", "", fmt.Errorf("unknown source environment %q", promoteFrom)
	}
	tgt = currentEnv()
	if promoteTo != "" {
		tgt = models.Environment(promoteTo)
		if !tgt.Valid() {
			return "", "", fmt.Errorf("unknown target environment %q", promoteTo)
		}
	}
	if src == tgt {
		return "", "", fmt.Errorf("source and target environment are both %s", src)
	}
	return src, tgt, nil
}

func runPromoteCandidates(cmd *cobra.Command, args []string) error {
	src, tgt, err := promoteEnvs()
	if err != nil {
		return err
	}

	reg, st, err := openRegistry()
	if err != nil {
		return err
	}
	defer st.Close()

	cands := promote.Candidates(reg.All(), src, tgt)
	if len(cands) == 0 {
		fmt.Printf("No candidates in %s missing from %s\n", src, tgt)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATUS\tFAILURES")
	for _, m := range cands {
		fmt.Fprintf(w, "%s\t%s\t%d\n", m.Name, m.Status, m.Failures)
	}
	w.Flush()
	return nil
}

func runPromoteApply(cmd *cobra.Command, args []string) error {
	src, tgt, err := promoteEnvs()
	if err != nil {
		return err
	}

	reg, st, err := openRegistry()
	if err != nil {
		return err
	}
	defer st.Close()

	cands := promote.Candidates(reg.All(), src, tgt)
	byName := make(map[string]bool, len(cands))
	for _, m := range cands {
		byName[m.Name] = true
	}

	names := args
	if len(names) == 0 {
		if len(cands) == 0 {
			fmt.Printf("No candidates in %s missing from %s\n", src, tgt)
			return nil
		}
		for _, m := range cands {
			names = append(names, m.Name)
		}
	} else {
		for _, name := range names {
			if !byName[name] {
				return fmt.Errorf("%q is not a promotion candidate from %s to %s", name, src, tgt)
			}
		}
	}

	created, err := promote.Apply(reg, tgt, names)
	if err != nil {
		return err
	}
	fmt.Printf("Promoted %d module(s) from %s to %s\n", created, src, tgt)
	return nil
}

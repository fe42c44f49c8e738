package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ems/internal/domain/auth"
)

var menuCmd = &cobra.Command{
	Use:       "menu <role>",
	Short:     "Print the navigation menu for a role",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"employee", "hr", "admin"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, ok := auth.ParseRole(args[0]); !ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "unknown role %q, showing the employee menu\n", args[0])
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "LABEL\tPATH\tICON")
		for _, entry := range auth.MenuForName(args[0]) {
			fmt.Fprintf(w, "%s\t%s\t%s\n", entry.Label, entry.Path, entry.IconRef)
		}
		return w.Flush()
	},
}

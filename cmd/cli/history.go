package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the product database with purchase history",
	Long: `Show every remembered product: its supermarkets, how often it was
bought, and the last purchase time.`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	eng, err := newEngine(cmd.Context())
	if err != nil {
		return err
	}

	templates := eng.Snapshot().Templates
	if len(templates) == 0 {
		fmt.Println("Product database is empty.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSUPERMARKETS\tPURCHASES\tLAST BOUGHT")
	for _, t := range templates {
		last := "-"
		if len(t.PurchaseLog) > 0 {
			last = t.PurchaseLog[len(t.PurchaseLog)-1].Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", t.Name, strings.Join(t.Supermarkets, ", "), len(t.PurchaseLog), last)
	}
	return w.Flush()
}

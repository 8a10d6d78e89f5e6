package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cestino/shopping-service/internal/list"
)

var (
	listSearch      string
	listSupermarket string
	listStatus      string
	listOutput      string
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the current shopping list",
	Long: `Show the current shopping list with the same filtering the app offers:
free-text search, a specific supermarket, and bought status. Unbought products
are listed before bought ones.`,
	Example: `  shopping-service list
  shopping-service list --supermarket Lidl
  shopping-service list --status active --search milk
  shopping-service list --output json`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listSearch, "search", "", "Filter by name substring (case-insensitive)")
	listCmd.Flags().StringVar(&listSupermarket, "supermarket", list.AllSupermarkets, "Filter by supermarket name, or 'all'")
	listCmd.Flags().StringVar(&listStatus, "status", string(list.StatusAll), "Filter by status: all, active or bought")
	listCmd.Flags().StringVar(&listOutput, "output", "table", "Output format: table or json")
}

func runList(cmd *cobra.Command, args []string) error {
	switch list.StatusFilter(listStatus) {
	case list.StatusAll, list.StatusActive, list.StatusBought:
	default:
		return fmt.Errorf("invalid status: %s (expected all, active or bought)", listStatus)
	}

	eng, err := newEngine(cmd.Context())
	if err != nil {
		return err
	}

	filter := list.Filter{
		Search:      listSearch,
		Supermarket: listSupermarket,
		Status:      list.StatusFilter(listStatus),
	}
	products := filter.Apply(eng.Snapshot().Products)

	if listOutput == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(products)
	}

	if len(products) == 0 {
		fmt.Println("Shopping list is empty.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSUPERMARKETS\tSTATUS")
	for _, p := range products {
		status := "active"
		if p.IsBought {
			status = fmt.Sprintf("bought %s", p.BoughtAt.Format("15:04:05"))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, strings.Join(p.Supermarkets, ", "), status)
	}
	return w.Flush()
}

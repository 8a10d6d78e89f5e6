package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cestino/shopping-service/internal/list"
)

var buyUndo bool

// buyCmd represents the buy command
var buyCmd = &cobra.Command{
	Use:   "buy <name-or-id>",
	Short: "Mark a product as bought (or undo it)",
	Long: `Mark a product as bought, stamping the purchase into the product
database. Bought products disappear from the list an hour later. The argument
matches a product id first, then a name (case-insensitive).`,
	Example: `  shopping-service buy Milk
  shopping-service buy Milk --undo`,
	Args: cobra.ExactArgs(1),
	RunE: runBuy,
}

func init() {
	rootCmd.AddCommand(buyCmd)

	buyCmd.Flags().BoolVar(&buyUndo, "undo", false, "Mark the product as not bought")
}

func runBuy(cmd *cobra.Command, args []string) error {
	eng, err := newEngine(cmd.Context())
	if err != nil {
		return err
	}

	target := findProduct(eng.Snapshot().Products, args[0])
	if target == nil {
		return fmt.Errorf("no product matches %q", args[0])
	}

	if err := eng.ToggleProductBought(cmd.Context(), target.ID, !buyUndo); err != nil {
		return err
	}

	if buyUndo {
		fmt.Printf("Moved %q back to the list.\n", target.Name)
	} else {
		fmt.Printf("Bought %q.\n", target.Name)
	}
	return nil
}

// findProduct resolves an argument to a product by id, then by name.
func findProduct(products []list.Product, arg string) *list.Product {
	for i := range products {
		if products[i].ID == arg {
			return &products[i]
		}
	}
	for i := range products {
		if list.EqualsIgnoreCase(products[i].Name, arg) {
			return &products[i]
		}
	}
	return nil
}

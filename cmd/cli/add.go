package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addMarkets []string

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a product to the shopping list",
	Long: `Add a product for one or more supermarkets. The product's market
selection is remembered in the product database for the next time.`,
	Example: `  shopping-service add Milk --market Lidl
  shopping-service add "Olive oil" --market Continente --market Mercadona`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringArrayVar(&addMarkets, "market", nil, "Supermarket the product is relevant for (repeatable)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	eng, err := newEngine(cmd.Context())
	if err != nil {
		return err
	}

	result := eng.AddProduct(cmd.Context(), args[0], addMarkets)
	if !result.Success {
		return fmt.Errorf("%s", result.Message)
	}

	fmt.Println(result.Message)
	return nil
}

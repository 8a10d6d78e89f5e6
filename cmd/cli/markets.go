package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// marketsCmd represents the markets command group
var marketsCmd = &cobra.Command{
	Use:   "markets",
	Short: "Manage supermarkets",
	RunE:  runMarketsList,
}

var marketsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a supermarket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine(cmd.Context())
		if err != nil {
			return err
		}
		result := eng.AddSupermarket(cmd.Context(), args[0])
		if !result.Success {
			return fmt.Errorf("%s", result.Message)
		}
		fmt.Println(result.Message)
		return nil
	},
}

var marketsRenameCmd = &cobra.Command{
	Use:   "rename <current> <new>",
	Short: "Rename a supermarket, updating every product and database item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine(cmd.Context())
		if err != nil {
			return err
		}
		result := eng.EditSupermarket(cmd.Context(), args[0], args[1])
		if !result.Success {
			return fmt.Errorf("%s", result.Message)
		}
		fmt.Println(result.Message)
		return nil
	},
}

var marketsRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Delete a supermarket, removing it from every product and database item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine(cmd.Context())
		if err != nil {
			return err
		}
		result := eng.DeleteSupermarket(cmd.Context(), args[0])
		if !result.Success {
			return fmt.Errorf("%s", result.Message)
		}
		fmt.Println(result.Message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(marketsCmd)
	marketsCmd.AddCommand(marketsAddCmd)
	marketsCmd.AddCommand(marketsRenameCmd)
	marketsCmd.AddCommand(marketsRemoveCmd)
}

func runMarketsList(cmd *cobra.Command, args []string) error {
	eng, err := newEngine(cmd.Context())
	if err != nil {
		return err
	}

	for _, name := range eng.Snapshot().Supermarkets {
		fmt.Println(name)
	}
	return nil
}

package main

import (
	"github.com/spf13/cobra"
)

var configPath string

// positionFlags holds the shared flag set for add and edit.
type positionFlags struct {
	description string
	ticker      string
	quantity    float64
	price       float64
	fees        float64
}

func (f *positionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "Free-form description of the position")
	cmd.Flags().StringVarP(&f.ticker, "ticker", "t", "", "Ticker symbol")
	cmd.Flags().Float64VarP(&f.quantity, "quantity", "q", 0, "Number of shares")
	cmd.Flags().Float64VarP(&f.price, "price", "p", 0, "Purchase price per share")
	cmd.Flags().Float64VarP(&f.fees, "fees", "f", 0, "Transaction fees")
	_ = cmd.MarkFlagRequired("ticker")
	_ = cmd.MarkFlagRequired("quantity")
	_ = cmd.MarkFlagRequired("price")
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "portfolio",
		Short: "A CLI for tracking a personal stock portfolio",
		Long:  `Track stock positions, fetch live prices, and compute cost basis, current value and profit/loss.`,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Show the portfolio valued at current prices",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return runList(a)
		},
	}

	addFlags := &positionFlags{}
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new position",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return runAdd(a, addFlags.description, addFlags.ticker, addFlags.quantity, addFlags.price, addFlags.fees)
		},
	}
	addFlags.register(addCmd)

	editFlags := &positionFlags{}
	editCmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an existing position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			return runEdit(a, id, editFlags.description, editFlags.ticker, editFlags.quantity, editFlags.price, editFlags.fees)
		},
	}
	editFlags.register(editCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			return runDelete(a, id)
		},
	}

	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Clear the price cache and revalue the portfolio",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return runRefresh(a)
		},
	}

	var exportOutput string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the valued portfolio as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return runExport(a, exportOutput)
		},
	}
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (defaults to a timestamped name, \"-\" for stdout)")

	root.AddCommand(listCmd, addCmd, editCmd, deleteCmd, refreshCmd, exportCmd)
	return root
}

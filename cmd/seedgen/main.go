// Command seedgen writes a demo product catalog CSV for local development.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"soda-dashboard/internal/datagen"
)

var (
	count int
	out   string
	seed  uint64

	rootCmd = &cobra.Command{
		Use:   "seedgen",
		Short: "Generate a demo soda product catalog",
		Long: `seedgen writes a CSV catalog of synthetic Amazon and Walmart soda
listings in the layout the dashboard loads at startup. Generated rows
mirror the real catalog's shape, including missing sales ranks and
units-sold figures on a share of Amazon listings.`,
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.Flags().IntVar(&count, "count", 889, "number of products to generate")
	rootCmd.Flags().StringVar(&out, "out", "products.csv", "output file path")
	rootCmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 for time-based)")
}

func run(cmd *cobra.Command, args []string) error {
	if count <= 0 {
		return fmt.Errorf("count must be positive, got %d", count)
	}

	products := datagen.NewGenerator(seed).Products(count)

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	defer f.Close()

	if err := datagen.WriteCSV(f, products); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", out, err)
	}

	cmd.Printf("wrote %d products to %s\n", len(products), out)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

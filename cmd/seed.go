package cmd

import (
	"fmt"
	"os"

	"evnt/internal/seed"
	"evnt/internal/store/pbstore"

	"github.com/pocketbase/pocketbase"
	"github.com/spf13/cobra"
)

func newSeedCategoriesCommand(app *pocketbase.PocketBase) *cobra.Command {
	var file string

	command := &cobra.Command{
		Use:   "seed-categories",
		Short: "Create or update the event categories from a YAML file",
		RunE: func(command *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			categories, err := seed.ParseCategories(f)
			if err != nil {
				return err
			}

			n, err := seed.Categories(command.Context(), pbstore.New(app), categories)
			if err != nil {
				return err
			}

			fmt.Fprintf(command.OutOrStdout(), "seeded %d categories\n", n)
			return nil
		},
	}
	command.Flags().StringVarP(&file, "file", "f", "data/categories.yaml", "category YAML file")

	return command
}

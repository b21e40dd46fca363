package commands

import (
	"github.com/spf13/cobra"

	"github.com/mytheresa/stockroom/cmd/stockroom/output"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long: `Create the categories and products tables, their unique indexes,
the quantity check and the category foreign key. Safe to run repeatedly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.store.AutoMigrate(cmd.Context()); err != nil {
				return err
			}
			if opts.jsonOutput {
				return output.JSON(map[string]string{"status": "migrated", "driver": d.cfg.DBDriver})
			}
			output.Success("Schema is up to date (%s)", d.cfg.DBDriver)
			return nil
		},
	}
}

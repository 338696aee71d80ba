package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sambeau/scql/pkg/scql/catalog"
)

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage SQLite catalogs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init <db>",
		Short: "Create an empty SQLite catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := catalog.InitSQLite(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.log.Info("catalog created", "path", args[0])
			fmt.Fprintf(a.stdout, "Created catalog %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import <db> <file.yaml>...",
		Short: "Copy the sources of YAML catalogs into a SQLite catalog",
		Long: `Copy the sources of one or more YAML catalogs into a SQLite catalog,
creating it if needed. Sources with the same name are replaced.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db := args[0]
			total := 0
			for _, f := range args[1:] {
				sources, err := catalog.LoadFile(f)
				if err != nil {
					return err
				}
				if err := catalog.StoreSQLite(cmd.Context(), db, sources); err != nil {
					return err
				}
				a.log.Info("catalog imported", "from", f, "to", db, "sources", len(sources))
				total += len(sources)
			}
			fmt.Fprintf(a.stdout, "Imported %d sources into %s\n", total, db)
			return nil
		},
	})

	return cmd
}

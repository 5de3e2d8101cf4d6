package catalog

import "github.com/spf13/cobra"

var Command = &cobra.Command{
	Use:   "catalog",
	Short: "inspect branch package catalogs",
}

func init() {
	Command.AddCommand(listCmd)
}

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ChickenNuggetsK/GTRadio/internal/stations"
)

func newStationsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stations",
		Short: "List the known radio stations and their archive names",
		RunE: func(cmd *cobra.Command, args []string) error {
			identities := stations.All()
			rows := make([][]string, 0, len(identities))
			for _, identity := range identities {
				rows = append(rows, []string{
					identity.Folder,
					identity.Canonical,
					identity.Display,
					strconv.Itoa(len(identity.Aliases)),
				})
			}
			out := renderTable([]string{"Archive", "Canonical", "Display Name", "Aliases"}, rows, 3)
			fmt.Fprintln(cmd.OutOrStdout(), out)
			fmt.Fprintf(cmd.OutOrStdout(), "%d stations known\n", len(identities))
			return nil
		},
	}
}

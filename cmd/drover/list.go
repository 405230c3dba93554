package main

import (
	"fmt"

	"drover/cmd/drover/ui"

	"github.com/spf13/cobra"
)

func listCmd(conn *connection) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List live nodes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cl, err := conn.client()
			if err != nil {
				return err
			}

			nodes, err := cl.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(nodes) == 0 {
				fmt.Println(ui.Muted("no live nodes"))
				return nil
			}

			rows := make([][]string, len(nodes))
			for i, n := range nodes {
				api := n.APIAddr
				if api == "" {
					api = "-"
				}
				rows[i] = []string{n.Handle, n.State, api, n.Dir}
			}

			fmt.Println(ui.Table([]string{"Handle", "State", "API", "Dir"}, rows))
			return nil
		},
	}
}

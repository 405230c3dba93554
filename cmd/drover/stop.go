package main

import (
	"fmt"

	"drover/cmd/drover/ui"

	"github.com/spf13/cobra"
)

func stopCmd(conn *connection) *cobra.Command {
	return &cobra.Command{
		Use:   "stop <handle>",
		Short: "Stop a node's daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := conn.client()
			if err != nil {
				return err
			}
			if err := cl.Stop(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println(ui.SuccessMsg("Node %s stopped.", ui.Bold(args[0])))
			return nil
		},
	}
}

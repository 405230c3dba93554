package main

import (
	"fmt"

	"drover/cmd/drover/ui"

	"github.com/spf13/cobra"
)

func cleanupCmd(conn *connection) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup <handle>",
		Short: "Tear a node down and release its handle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := conn.client()
			if err != nil {
				return err
			}
			if err := cl.Cleanup(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println(ui.SuccessMsg("Node %s cleaned up.", ui.Bold(args[0])))
			return nil
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func versionCmd(conn *connection) *cobra.Command {
	return &cobra.Command{
		Use:   "version <handle>",
		Short: "Print a node's daemon version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := conn.client()
			if err != nil {
				return err
			}
			v, err := cl.Version(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(v)
			return nil
		},
	}
}

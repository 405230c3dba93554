package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func pidCmd(conn *connection) *cobra.Command {
	return &cobra.Command{
		Use:   "pid <handle>",
		Short: "Print a started node's process id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := conn.client()
			if err != nil {
				return err
			}
			pid, err := cl.PID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(pid)
			return nil
		},
	}
}

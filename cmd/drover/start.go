package main

import (
	"fmt"

	"drover/cmd/drover/ui"

	"github.com/spf13/cobra"
)

func startCmd(conn *connection) *cobra.Command {
	return &cobra.Command{
		Use:   "start <handle>",
		Short: "Start a node's daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := conn.client()
			if err != nil {
				return err
			}

			info, err := cl.Start(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Println(ui.SuccessMsg("Node %s started.", ui.Bold(info.Handle)))
			fmt.Printf("%s %s\n", ui.Muted("api:"), info.APIAddr)
			if info.GatewayAddr != "" {
				fmt.Printf("%s %s\n", ui.Muted("gateway:"), info.GatewayAddr)
			}
			if info.RPCAddr != "" {
				fmt.Printf("%s %s\n", ui.Muted("rpc:"), info.RPCAddr)
			}
			return nil
		},
	}
}

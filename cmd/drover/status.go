package main

import (
	"fmt"

	"drover/cmd/drover/ui"

	"github.com/spf13/cobra"
)

func statusCmd(conn *connection) *cobra.Command {
	return &cobra.Command{
		Use:   "status <handle>",
		Short: "Show a node's state and addresses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := conn.client()
			if err != nil {
				return err
			}

			info, err := cl.Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("%s %s\n", ui.Muted("handle:"), ui.Bold(info.Handle))
			fmt.Printf("%s %s\n", ui.Muted("state:"), ui.Accent(info.State))
			fmt.Printf("%s %s\n", ui.Muted("dir:"), info.Dir)
			fmt.Printf("%s %s\n", ui.Muted("disposable:"), ui.Bool(info.Disposable))
			fmt.Printf("%s %s\n", ui.Muted("initialized:"), ui.Bool(info.Initialized))
			fmt.Printf("%s %s\n", ui.Muted("started:"), ui.Bool(info.Started))
			fmt.Printf("%s %s\n", ui.Muted("api:"), info.APIAddr)
			fmt.Printf("%s %s\n", ui.Muted("gateway:"), info.GatewayAddr)
			fmt.Printf("%s %s\n", ui.Muted("rpc:"), info.RPCAddr)
			return nil
		},
	}
}

package contextcmd

import (
	"fmt"

	"drover/cmd/drover/ui"
	"drover/config"

	"github.com/spf13/cobra"
)

func addCmd() *cobra.Command {
	var addr, socket string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add or update a context",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			name := args[0]

			if addr == "" && socket == "" {
				return fmt.Errorf("at least one of --addr or --socket is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			cfg.Set(name, config.Context{
				Addr:   addr,
				Socket: socket,
			})

			if err := cfg.Save(); err != nil {
				return err
			}

			fmt.Println(ui.SuccessMsg("Context %s saved.", ui.Bold(name)))
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Daemon TCP address (host:port)")
	cmd.Flags().StringVar(&socket, "socket", "", "Daemon unix socket path")
	return cmd
}

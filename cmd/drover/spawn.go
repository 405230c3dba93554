package main

import (
	"fmt"

	"drover"
	"drover/cmd/drover/ui"

	"github.com/spf13/cobra"
)

func spawnCmd(conn *connection) *cobra.Command {
	var (
		bin  string
		dir  string
		args []string
		env  map[string]string
	)

	cmd := &cobra.Command{
		Use:   "spawn",
		Short: "Spawn a new node",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cl, err := conn.client()
			if err != nil {
				return err
			}

			info, err := cl.Spawn(cmd.Context(), drover.SpawnSpec{
				Bin:  bin,
				Dir:  dir,
				Args: args,
				Env:  env,
			})
			if err != nil {
				return err
			}

			fmt.Println(ui.SuccessMsg("Node %s spawned.", ui.Bold(info.Handle)))
			fmt.Println(ui.Muted(info.Dir))
			return nil
		},
	}

	cmd.Flags().StringVar(&bin, "bin", "", "Node binary override")
	cmd.Flags().StringVar(&dir, "dir", "", "Node working directory (default: disposable temp dir)")
	cmd.Flags().StringArrayVar(&args, "arg", nil, "Extra daemon argument (repeatable)")
	cmd.Flags().StringToStringVar(&env, "env", nil, "Environment override KEY=VALUE (repeatable)")
	return cmd
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"drover/cmd/drover/ui"

	"github.com/spf13/cobra"
)

func initCmd(conn *connection) *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "init <handle>",
		Short: "Initialize a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg map[string]any
			if configFile != "" {
				data, err := os.ReadFile(configFile)
				if err != nil {
					return fmt.Errorf("read config file: %w", err)
				}
				if err := json.Unmarshal(data, &cfg); err != nil {
					return fmt.Errorf("parse config file: %w", err)
				}
			}

			cl, err := conn.client()
			if err != nil {
				return err
			}

			info, err := cl.Init(cmd.Context(), args[0], cfg)
			if err != nil {
				return err
			}

			fmt.Println(ui.SuccessMsg("Node %s initialized.", ui.Bold(info.Handle)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "f", "", "Node config JSON file")
	return cmd
}

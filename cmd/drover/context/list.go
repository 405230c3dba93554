package contextcmd

import (
	"fmt"

	"drover/cmd/drover/ui"
	"drover/config"

	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List contexts",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if len(cfg.Contexts) == 0 {
				fmt.Println(ui.Muted("no contexts configured"))
				return nil
			}

			var rows [][]string
			for name, c := range cfg.Contexts {
				current := ""
				if name == cfg.CurrentContext {
					current = "*"
				}
				rows = append(rows, []string{current, name, c.Endpoint()})
			}

			fmt.Println(ui.Table([]string{"", "Name", "Endpoint"}, rows))
			return nil
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List available speech voices",
	Args:  cobra.NoArgs,

	RunE: func(cmd *cobra.Command, _ []string) error {
		c := newClient()

		voices, err := c.Voices.List(cmd.Context())

		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()

		for _, v := range voices {
			fmt.Fprintf(w, "%-24s %s %s\n", v.ID, v.Name, dimStyle.Render(v.Category))
		}

		return nil
	},
}

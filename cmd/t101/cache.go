package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the server speech cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached speech",
	Args:  cobra.NoArgs,

	RunE: func(cmd *cobra.Command, _ []string) error {
		c := newClient()

		removed, err := c.Cache.Clear(cmd.Context())

		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached entries\n", removed)

		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
}

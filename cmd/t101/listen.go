package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	listenMaxDuration time.Duration
	listenLanguage    string
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Record one utterance and print the transcript",
	Args:  cobra.NoArgs,

	RunE: func(cmd *cobra.Command, _ []string) error {
		resolver, _ := newResolver(newClient(), listenLanguage)

		transcript, err := listen(cmd.Context(), resolver, listenMaxDuration)

		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), transcript)

		return nil
	},
}

func init() {
	flags := listenCmd.Flags()

	flags.DurationVar(&listenMaxDuration, "max-duration", 10*time.Second, "maximum recording length")
	flags.StringVar(&listenLanguage, "language", "", "spoken language hint (ISO-639-1)")
}

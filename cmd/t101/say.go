package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

var sayFlags speechFlags

var sayCmd = &cobra.Command{
	Use:   "say TEXT...",
	Short: "Speak text in the T-101 voice",
	Args:  cobra.MinimumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		input := strings.TrimSpace(strings.Join(args, " "))

		if input == "" {
			return errors.New("nothing to say")
		}

		queue := newQueue(newClient(), !sayFlags.native)
		defer queue.Close()

		done, err := speak(queue, input, sayFlags)

		if err != nil {
			return err
		}

		select {
		case <-done:
			return nil

		case <-cmd.Context().Done():
			return cmd.Context().Err()
		}
	},
}

func init() {
	flags := sayCmd.Flags()

	flags.StringVar(&sayFlags.voice, "voice-id", "", "speech voice id")
	flags.StringVar(&sayFlags.model, "model-id", "", "speech model id")
	flags.BoolVar(&sayFlags.native, "native", false, "use the on-device speech engine")
}

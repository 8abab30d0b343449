package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/adrianliechti/t101/pkg/voice"

	"github.com/spf13/cobra"
)

// maxDeviceFailures is how many device errors in a row end voice input.
const maxDeviceFailures = 3

// voiceRetryDelay paces the listen loop after a failed attempt.
const voiceRetryDelay = time.Second

type deviceFailures struct {
	count int
}

// record counts consecutive device errors and reports whether voice input
// should be given up.
func (f *deviceFailures) record(err error) bool {
	switch {
	case errors.Is(err, voice.ErrNoDevice),
		errors.Is(err, voice.ErrDeviceBusy),
		errors.Is(err, voice.ErrPermissionDenied),
		errors.Is(err, voice.ErrNoBackend):
		f.count++
	default:
		f.count = 0
	}

	return f.count >= maxDeviceFailures
}

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

var (
	chatVoiceInput  bool
	chatSpeak       bool
	chatMaxDuration time.Duration
	chatLanguage    string
	chatSpeech      speechFlags
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the T-101",
	Args:  cobra.NoArgs,

	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		c := newClient()

		queue := newQueue(c, !chatSpeech.native)
		defer queue.Close()

		resolver, caps := newResolver(c, chatLanguage)

		if chatVoiceInput && !caps.Recognizer && !caps.Recorder {
			printError(fmt.Errorf("voice input unavailable, falling back to keyboard"))
			chatVoiceInput = false
		}

		reader := bufio.NewReader(os.Stdin)
		output := os.Stdout

		var failures deviceFailures

		fmt.Fprintln(output, dimStyle.Render("T-101 online. Type /exit to quit."))

		for {
			if ctx.Err() != nil {
				return nil
			}

			var input string

			if chatVoiceInput {
				fmt.Fprint(output, promptStyle.Render("[listening] "))

				transcript, err := listen(ctx, resolver, chatMaxDuration)

				if err != nil {
					fmt.Fprintln(output)
					printError(err)

					if failures.record(err) {
						printError(fmt.Errorf("voice input keeps failing, falling back to keyboard"))
						chatVoiceInput = false
					} else {
						sleepContext(ctx, voiceRetryDelay)
					}

					continue
				}

				failures.record(nil)

				fmt.Fprintln(output, transcript)
				input = transcript
			} else {
				fmt.Fprint(output, promptStyle.Render(">>> "))

				line, err := reader.ReadString('\n')

				if err != nil {
					if err == io.EOF {
						return nil
					}

					return err
				}

				input = strings.TrimSpace(line)
			}

			if input == "" {
				continue
			}

			switch strings.ToLower(input) {
			case "/exit", "/quit":
				return nil
			}

			reply, err := c.Chat.Send(ctx, input)

			if err != nil {
				printError(err)
				continue
			}

			fmt.Fprintln(output, replyStyle.Render(reply))

			if chatSpeak {
				done, err := speak(queue, reply, chatSpeech)

				if err != nil {
					printError(err)
					continue
				}

				// avoid recording our own voice
				if chatVoiceInput {
					select {
					case <-done:
					case <-ctx.Done():
					}
				}
			}
		}
	},
}

func init() {
	flags := chatCmd.Flags()

	flags.BoolVar(&chatVoiceInput, "voice", false, "use the microphone instead of the keyboard")
	flags.BoolVar(&chatSpeak, "speak", false, "speak replies aloud")
	flags.DurationVar(&chatMaxDuration, "max-duration", 10*time.Second, "maximum recording length")
	flags.StringVar(&chatLanguage, "language", "", "spoken language hint (ISO-639-1)")

	flags.StringVar(&chatSpeech.voice, "voice-id", "", "speech voice id")
	flags.StringVar(&chatSpeech.model, "model-id", "", "speech model id")
	flags.BoolVar(&chatSpeech.native, "native", false, "use the on-device speech engine")
}

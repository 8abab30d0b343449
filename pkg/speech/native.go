package speech

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"
)

var ErrNoNativeEngine = errors.New("no native speech engine found")

// Text never reaches an engine as a leading argument: engines that can read
// stdin get it there, the others get it after "--".
var nativeEngines = []struct {
	name  string
	args  []string
	stdin bool
}{
	{"say", []string{"-f", "-"}, true},
	{"espeak-ng", []string{"--stdin"}, true},
	{"espeak", []string{"--stdin"}, true},
	{"spd-say", []string{"--wait", "--"}, false},
}

// Native speaks text by running an OS speech command.
type Native struct {
	path  string
	args  []string
	stdin bool
}

var detectNative = sync.OnceValues(func() (*Native, error) {
	for _, e := range nativeEngines {
		if path, err := exec.LookPath(e.name); err == nil {
			return &Native{path: path, args: e.args, stdin: e.stdin}, nil
		}
	}

	return nil, ErrNoNativeEngine
})

// DetectNative returns the first available speech command. The lookup runs once per process.
func DetectNative() (*Native, error) {
	return detectNative()
}

func (n *Native) Name() string {
	return n.path
}

func (n *Native) Speak(ctx context.Context, text string) error {
	args := append([]string{}, n.args...)

	if !n.stdin {
		args = append(args, text)
	}

	cmd := exec.CommandContext(ctx, n.path, args...)

	if n.stdin {
		cmd.Stdin = strings.NewReader(text)
	}

	return cmd.Run()
}

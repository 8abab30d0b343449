package voice

import (
	"os/exec"
	"strings"
)

type Capabilities struct {
	Recognizer bool
	Recorder   bool
}

// Detect reports which voice input strategies can run on this machine.
func Detect(recognizerCommand string) Capabilities {
	c := Capabilities{
		Recorder: recorderAvailable,
	}

	if fields := strings.Fields(recognizerCommand); len(fields) > 0 {
		_, err := exec.LookPath(fields[0])
		c.Recognizer = err == nil
	}

	return c
}

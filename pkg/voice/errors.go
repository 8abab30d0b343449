package voice

import "errors"

var (
	ErrNoAudio   = errors.New("no audio data recorded")
	ErrNoSpeech  = errors.New("no speech recognized")
	ErrNoDevice  = errors.New("no audio input device")
	ErrTimeout   = errors.New("voice input timed out")
	ErrNoBackend = errors.New("no voice input available")

	ErrDeviceBusy       = errors.New("audio input device busy")
	ErrPermissionDenied = errors.New("microphone permission denied")

	ErrRecognizerUnavailable = errors.New("speech recognizer unavailable")
)

package provider

import (
	"context"
)

type VoiceLister interface {
	Voices(ctx context.Context) ([]Voice, error)
}

type Voice struct {
	ID   string
	Name string

	Category    string
	Description string

	PreviewURL string
}

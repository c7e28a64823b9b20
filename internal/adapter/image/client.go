// Package image wraps the external text-to-image collaborator.
package image

import "context"

// Image is a generated image payload.
type Image struct {
	Data     []byte
	MimeType string
}

// Client is the text-to-image contract consumed by the illustration tool.
type Client interface {
	// Generate renders one image for the prompt. Callers must treat any
	// error as recoverable; the illustration tool degrades to a
	// placeholder instead of surfacing it.
	Generate(ctx context.Context, prompt string) (*Image, error)
}

// Package render turns FIR markup into a shareable artifact.
package render

import (
	"context"

	"safevoice-backend/config"
)

// Artifact is a rendered document ready for storage
type Artifact struct {
	Data        []byte
	ContentType string
	Extension   string
	Pages       int
}

// Renderer converts markup into an artifact
type Renderer interface {
	Render(ctx context.Context, markup string) (*Artifact, error)
}

// NewRenderer returns the renderer selected by cfg.Mode
func NewRenderer(cfg config.RenderConfig) Renderer {
	if cfg.Mode == config.RenderModeHTML {
		return HTMLRenderer{}
	}
	return NewPDFRenderer(cfg.BrowserBin)
}

// HTMLRenderer keeps the markup itself as the artifact
type HTMLRenderer struct{}

// Render wraps markup as a single-page HTML artifact
func (HTMLRenderer) Render(ctx context.Context, markup string) (*Artifact, error) {
	return &Artifact{
		Data:        []byte(markup),
		ContentType: "text/html; charset=utf-8",
		Extension:   ".html",
		Pages:       1,
	}, nil
}

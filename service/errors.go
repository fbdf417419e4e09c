package service

import "errors"

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrEmptyMessage         = errors.New("message text is empty")
	ErrNoUserMessages       = errors.New("conversation has no user messages to report")
	ErrJobCreationFailed    = errors.New("failed to create generation job")
	ErrJobNotFound          = errors.New("generation job not found")
	ErrDocumentNotFound     = errors.New("document not found")
	ErrFileNotFound         = errors.New("file not found")
	ErrGenerationFailed     = errors.New("failed to generate content")
	ErrRenderFailed         = errors.New("failed to render document")
)

package service

import (
	"context"

	"safevoice-backend/models"

	"github.com/google/uuid"
)

// ConversationStore persists conversations and their turns
type ConversationStore interface {
	Create(ctx context.Context, conv *models.Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	AppendTurn(ctx context.Context, turn *models.ChatTurn) error
	ResetTurns(ctx context.Context, conversationID uuid.UUID, turns []models.ChatTurn) error
}

// JobStore persists generation jobs
type JobStore interface {
	Create(ctx context.Context, job *models.GenerationJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.GenerationJob, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.GenerationJobStatus) error
	UpdateProgress(ctx context.Context, id uuid.UUID, currentStep string, steps models.GenerationSteps) error
	Complete(ctx context.Context, id uuid.UUID, documentID uuid.UUID) error
	Fail(ctx context.Context, id uuid.UUID, errorMessage string) error
}

// DocumentStore persists FIR drafts
type DocumentStore interface {
	Create(ctx context.Context, doc *models.FIRDocument) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.FIRDocument, error)
}

// FileStore persists rendered file metadata
type FileStore interface {
	Create(ctx context.Context, file *models.File) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.File, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

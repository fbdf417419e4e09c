package repository

import (
	"context"

	"safevoice-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FIRDocumentRepository handles database operations for FIR drafts
type FIRDocumentRepository struct {
	db *pgxpool.Pool
}

// NewFIRDocumentRepository creates a new FIR document repository
func NewFIRDocumentRepository(db *pgxpool.Pool) *FIRDocumentRepository {
	return &FIRDocumentRepository{db: db}
}

// Create stores a generated FIR draft
func (r *FIRDocumentRepository) Create(ctx context.Context, doc *models.FIRDocument) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}

	query := `
		INSERT INTO fir_documents (
			id, conversation_id, job_id, file_id, raw_text, sections, markup, pages
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	return r.db.QueryRow(
		ctx, query,
		doc.ID,
		doc.ConversationID,
		doc.JobID,
		doc.FileID,
		doc.RawText,
		doc.Sections,
		doc.Markup,
		doc.Pages,
	).Scan(&doc.CreatedAt)
}

// GetByID retrieves an FIR draft by ID
func (r *FIRDocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.FIRDocument, error) {
	doc := &models.FIRDocument{}
	query := `
		SELECT id, conversation_id, job_id, file_id, raw_text, sections, markup, pages, created_at
		FROM fir_documents
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&doc.ConversationID,
		&doc.JobID,
		&doc.FileID,
		&doc.RawText,
		&doc.Sections,
		&doc.Markup,
		&doc.Pages,
		&doc.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}

	return doc, nil
}

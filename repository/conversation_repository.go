package repository

import (
	"context"
	"fmt"

	"safevoice-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ConversationRepository handles database operations for conversations and their turns
type ConversationRepository struct {
	db *pgxpool.Pool
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create inserts a conversation and any turns it already carries
func (r *ConversationRepository) Create(ctx context.Context, conv *models.Conversation) error {
	if conv.ID == uuid.Nil {
		conv.ID = uuid.New()
	}

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO conversations (id, user_id)
			VALUES ($1, $2)
			RETURNING created_at, updated_at`

		if err := tx.QueryRow(ctx, query, conv.ID, conv.UserID).Scan(&conv.CreatedAt, &conv.UpdatedAt); err != nil {
			return fmt.Errorf("failed to insert conversation: %w", err)
		}

		for i := range conv.Turns {
			conv.Turns[i].ConversationID = conv.ID
			if err := insertTurn(ctx, tx, &conv.Turns[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID retrieves a conversation with its turns in order
func (r *ConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	conv := &models.Conversation{}
	query := `
		SELECT id, user_id, created_at, updated_at
		FROM conversations
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&conv.ID,
		&conv.UserID,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, conversation_id, position, role, text, created_at
		FROM conversation_turns
		WHERE conversation_id = $1
		ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	conv.Turns = make([]models.ChatTurn, 0)
	for rows.Next() {
		var turn models.ChatTurn
		err := rows.Scan(
			&turn.ID,
			&turn.ConversationID,
			&turn.Position,
			&turn.Role,
			&turn.Text,
			&turn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		conv.Turns = append(conv.Turns, turn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating turns: %w", err)
	}

	return conv, nil
}

// AppendTurn adds a turn at the end of the conversation
func (r *ConversationRepository) AppendTurn(ctx context.Context, turn *models.ChatTurn) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return insertTurn(ctx, tx, turn)
	})
}

// ResetTurns removes every turn and starts the transcript over with the given turns
func (r *ConversationRepository) ResetTurns(ctx context.Context, conversationID uuid.UUID, turns []models.ChatTurn) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM conversation_turns WHERE conversation_id = $1`, conversationID)
		if err != nil {
			return fmt.Errorf("failed to delete turns: %w", err)
		}

		for i := range turns {
			turns[i].ConversationID = conversationID
			if err := insertTurn(ctx, tx, &turns[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// insertTurn appends turn after the conversation's current last position
// and bumps the conversation's updated_at. The conversation row is locked so
// concurrent appends get distinct positions.
func insertTurn(ctx context.Context, tx pgx.Tx, turn *models.ChatTurn) error {
	if turn.ID == uuid.Nil {
		turn.ID = uuid.New()
	}

	tag, err := tx.Exec(ctx, `
		UPDATE conversations SET updated_at = NOW()
		WHERE id = $1`, turn.ConversationID)
	if err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	query := `
		INSERT INTO conversation_turns (id, conversation_id, position, role, text)
		SELECT $1, $2, COALESCE(MAX(position) + 1, 0), $3, $4
		FROM conversation_turns
		WHERE conversation_id = $2
		RETURNING position, created_at`

	err = tx.QueryRow(ctx, query,
		turn.ID,
		turn.ConversationID,
		turn.Role,
		turn.Text,
	).Scan(&turn.Position, &turn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert turn: %w", err)
	}

	return nil
}

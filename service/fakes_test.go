package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"safevoice-backend/llm"
	"safevoice-backend/models"
	"safevoice-backend/repository"
	"safevoice-backend/search"

	"github.com/google/uuid"
)

type memConversations struct {
	mu    sync.Mutex
	convs map[uuid.UUID]*models.Conversation
}

func newMemConversations() *memConversations {
	return &memConversations{convs: make(map[uuid.UUID]*models.Conversation)}
}

func (m *memConversations) Create(ctx context.Context, conv *models.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if conv.ID == uuid.Nil {
		conv.ID = uuid.New()
	}
	conv.CreatedAt = time.Now()
	conv.UpdatedAt = conv.CreatedAt
	for i := range conv.Turns {
		conv.Turns[i].ID = uuid.New()
		conv.Turns[i].ConversationID = conv.ID
		conv.Turns[i].Position = i
	}

	stored := *conv
	stored.Turns = append([]models.ChatTurn(nil), conv.Turns...)
	m.convs[conv.ID] = &stored
	return nil
}

func (m *memConversations) GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv, ok := m.convs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *conv
	out.Turns = append([]models.ChatTurn(nil), conv.Turns...)
	return &out, nil
}

func (m *memConversations) AppendTurn(ctx context.Context, turn *models.ChatTurn) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv, ok := m.convs[turn.ConversationID]
	if !ok {
		return repository.ErrNotFound
	}
	turn.ID = uuid.New()
	turn.Position = len(conv.Turns)
	conv.Turns = append(conv.Turns, *turn)
	return nil
}

func (m *memConversations) ResetTurns(ctx context.Context, conversationID uuid.UUID, turns []models.ChatTurn) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv, ok := m.convs[conversationID]
	if !ok {
		return repository.ErrNotFound
	}
	conv.Turns = nil
	for i := range turns {
		turns[i].ID = uuid.New()
		turns[i].ConversationID = conversationID
		turns[i].Position = i
		conv.Turns = append(conv.Turns, turns[i])
	}
	return nil
}

type memJobs struct {
	jobs map[uuid.UUID]*models.GenerationJob
}

func newMemJobs() *memJobs {
	return &memJobs{jobs: make(map[uuid.UUID]*models.GenerationJob)}
}

func (m *memJobs) Create(ctx context.Context, job *models.GenerationJob) error {
	stored := *job
	m.jobs[job.ID] = &stored
	return nil
}

func (m *memJobs) GetByID(ctx context.Context, id uuid.UUID) (*models.GenerationJob, error) {
	job, ok := m.jobs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *job
	out.Steps = append(models.GenerationSteps(nil), job.Steps...)
	return &out, nil
}

func (m *memJobs) UpdateStatus(ctx context.Context, id uuid.UUID, status models.GenerationJobStatus) error {
	m.jobs[id].Status = status
	return nil
}

func (m *memJobs) UpdateProgress(ctx context.Context, id uuid.UUID, currentStep string, steps models.GenerationSteps) error {
	m.jobs[id].CurrentStep = &currentStep
	m.jobs[id].Steps = steps
	return nil
}

func (m *memJobs) Complete(ctx context.Context, id uuid.UUID, documentID uuid.UUID) error {
	now := time.Now()
	m.jobs[id].Status = models.JobStatusCompleted
	m.jobs[id].DocumentID = &documentID
	m.jobs[id].CompletedAt = &now
	return nil
}

func (m *memJobs) Fail(ctx context.Context, id uuid.UUID, errorMessage string) error {
	m.jobs[id].Status = models.JobStatusFailed
	m.jobs[id].ErrorMessage = &errorMessage
	return nil
}

type memDocuments struct {
	docs map[uuid.UUID]*models.FIRDocument
	err  error
}

func (m *memDocuments) Create(ctx context.Context, doc *models.FIRDocument) error {
	if m.err != nil {
		return m.err
	}
	if m.docs == nil {
		m.docs = make(map[uuid.UUID]*models.FIRDocument)
	}
	m.docs[doc.ID] = doc
	return nil
}

func (m *memDocuments) GetByID(ctx context.Context, id uuid.UUID) (*models.FIRDocument, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return doc, nil
}

type memFiles struct {
	files map[uuid.UUID]*models.File
}

func (m *memFiles) Create(ctx context.Context, file *models.File) error {
	if m.files == nil {
		m.files = make(map[uuid.UUID]*models.File)
	}
	m.files[file.ID] = file
	return nil
}

func (m *memFiles) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.files, id)
	return nil
}

func (m *memFiles) GetByID(ctx context.Context, id uuid.UUID) (*models.File, error) {
	file, ok := m.files[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return file, nil
}

// scriptedGenerator answers each call with the next reply or error
type scriptedGenerator struct {
	replies  []string
	errs     []error
	requests []llm.Request
}

func (g *scriptedGenerator) Generate(ctx context.Context, req llm.Request) (string, error) {
	i := len(g.requests)
	g.requests = append(g.requests, req)
	if i < len(g.errs) && g.errs[i] != nil {
		return "", g.errs[i]
	}
	if i < len(g.replies) {
		return g.replies[i], nil
	}
	return "", errors.New("no scripted reply")
}

type stubSearcher struct {
	results []search.Result
	err     error
	queries []string
}

func (s *stubSearcher) Search(ctx context.Context, query string) ([]search.Result, error) {
	s.queries = append(s.queries, query)
	return s.results, s.err
}

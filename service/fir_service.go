package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"safevoice-backend/document"
	"safevoice-backend/llm"
	"safevoice-backend/logger"
	"safevoice-backend/models"
	"safevoice-backend/observe"
	"safevoice-backend/render"
	"safevoice-backend/repository"
	"safevoice-backend/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// FIR generation steps, in order
const (
	StepExtracting = "Extracting Details"
	StepAssembling = "Assembling Document"
	StepRendering  = "Rendering Document"
)

const firFilenameBase = "fir_draft"

// FIRService turns a conversation into a rendered FIR draft
type FIRService struct {
	conversations ConversationStore
	jobs          JobStore
	documents     DocumentStore
	files         FileStore
	storage       storage.Storage
	generator     llm.Generator
	renderer      render.Renderer
	extractor     *document.Extractor
	assembler     *document.Assembler
	metrics       *observe.Metrics
	log           *logger.Logger
}

// FIRServiceOption is a functional option for FIRService
type FIRServiceOption func(*FIRService)

// FIRWithConversationStore sets the conversation store
func FIRWithConversationStore(store ConversationStore) FIRServiceOption {
	return func(s *FIRService) {
		s.conversations = store
	}
}

// FIRWithJobStore sets the generation job store
func FIRWithJobStore(store JobStore) FIRServiceOption {
	return func(s *FIRService) {
		s.jobs = store
	}
}

// FIRWithDocumentStore sets the FIR document store
func FIRWithDocumentStore(store DocumentStore) FIRServiceOption {
	return func(s *FIRService) {
		s.documents = store
	}
}

// FIRWithFileStore sets the file metadata store
func FIRWithFileStore(store FileStore) FIRServiceOption {
	return func(s *FIRService) {
		s.files = store
	}
}

// FIRWithStorage sets the artifact storage backend
func FIRWithStorage(st storage.Storage) FIRServiceOption {
	return func(s *FIRService) {
		s.storage = st
	}
}

// FIRWithGenerator sets the language model
func FIRWithGenerator(g llm.Generator) FIRServiceOption {
	return func(s *FIRService) {
		s.generator = g
	}
}

// FIRWithRenderer sets the document renderer
func FIRWithRenderer(r render.Renderer) FIRServiceOption {
	return func(s *FIRService) {
		s.renderer = r
	}
}

// FIRWithExtractor overrides the section extractor
func FIRWithExtractor(e *document.Extractor) FIRServiceOption {
	return func(s *FIRService) {
		s.extractor = e
	}
}

// FIRWithAssembler overrides the document assembler
func FIRWithAssembler(a *document.Assembler) FIRServiceOption {
	return func(s *FIRService) {
		s.assembler = a
	}
}

// FIRWithMetrics sets the metrics instruments
func FIRWithMetrics(m *observe.Metrics) FIRServiceOption {
	return func(s *FIRService) {
		s.metrics = m
	}
}

// FIRWithLogger sets the logger
func FIRWithLogger(l *logger.Logger) FIRServiceOption {
	return func(s *FIRService) {
		s.log = l
	}
}

// NewFIRService creates a new FIR service
func NewFIRService(opts ...FIRServiceOption) *FIRService {
	s := &FIRService{
		extractor: document.NewExtractor(document.DefaultLabels()),
		assembler: document.NewAssembler(),
		renderer:  render.HTMLRenderer{},
		log:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateFIRRequest represents a request to draft an FIR
type GenerateFIRRequest struct {
	ConversationID uuid.UUID
}

// GenerateFIRResult carries the job that will produce the draft
type GenerateFIRResult struct {
	JobID  uuid.UUID
	Status models.GenerationJobStatus
}

// GenerateFIR validates the conversation and creates a pending generation
// job. The work itself happens in ProcessFIR.
func (s *FIRService) GenerateFIR(ctx context.Context, req GenerateFIRRequest) (*GenerateFIRResult, error) {
	if s.conversations == nil {
		return nil, errors.New("conversation store not set")
	}
	if s.jobs == nil {
		return nil, errors.New("generation job store not set")
	}

	conv, err := s.conversations.GetByID(ctx, req.ConversationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	if !conv.HasUserTurn() {
		return nil, ErrNoUserMessages
	}

	job := &models.GenerationJob{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		Status:         models.JobStatusPending,
		Steps:          initializeSteps(),
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		s.log.Error("failed to create generation job", logrus.Fields{
			"conversation_id": conv.ID.String(),
			"error":           err.Error(),
		})
		return nil, ErrJobCreationFailed
	}

	return &GenerateFIRResult{
		JobID:  job.ID,
		Status: job.Status,
	}, nil
}

// GetJobStatusRequest represents a request to poll a job
type GetJobStatusRequest struct {
	JobID uuid.UUID
}

// GetJobStatusResult carries the job's current state
type GetJobStatusResult struct {
	Job *models.GenerationJob
}

// GetJobStatus retrieves the current state of a generation job
func (s *FIRService) GetJobStatus(ctx context.Context, req GetJobStatusRequest) (*GetJobStatusResult, error) {
	if s.jobs == nil {
		return nil, errors.New("generation job store not set")
	}

	job, err := s.jobs.GetByID(ctx, req.JobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}

	return &GetJobStatusResult{Job: job}, nil
}

// GetDocument retrieves a generated FIR draft
func (s *FIRService) GetDocument(ctx context.Context, id uuid.UUID) (*models.FIRDocument, error) {
	if s.documents == nil {
		return nil, errors.New("document store not set")
	}

	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	return doc, nil
}

// OpenFile returns a rendered file's metadata and a reader over its content.
// The caller closes the reader.
func (s *FIRService) OpenFile(ctx context.Context, id uuid.UUID) (*models.File, io.ReadCloser, error) {
	if s.files == nil || s.storage == nil {
		return nil, nil, errors.New("file store not set")
	}

	file, err := s.files.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, err
	}

	reader, err := s.storage.Download(ctx, file.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, reader, nil
}

// ProcessFIR performs the generation work for a job. It is meant to run in
// its own goroutine; failures are recorded on the job.
func (s *FIRService) ProcessFIR(ctx context.Context, jobID uuid.UUID) error {
	if s.jobs == nil {
		return errors.New("generation job store not set")
	}
	if s.conversations == nil || s.documents == nil || s.files == nil || s.storage == nil {
		return errors.New("FIR service is missing a store")
	}
	if s.generator == nil {
		return errors.New("generator not set")
	}

	start := time.Now()

	// 1. Load job and conversation
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load generation job: %w", err)
	}

	conv, err := s.conversations.GetByID(ctx, job.ConversationID)
	if err != nil {
		s.markJobFailed(ctx, jobID, "failed to load conversation: "+err.Error())
		return err
	}

	if err := s.jobs.UpdateStatus(ctx, jobID, models.JobStatusInProgress); err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	// 2. Extract details from the transcript
	if err := s.updateStepStatus(ctx, jobID, StepExtracting, models.StepInProgress); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	prompt := document.ExtractionPrompt(s.extractor.Labels(), conv.Turns)
	raw, err := s.generator.Generate(ctx, llm.Request{Prompt: prompt})
	if err != nil {
		s.failStep(ctx, jobID, StepExtracting, "failed to extract details: "+err.Error())
		return fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	sections := s.extractor.Extract(raw)

	if err := s.updateStepStatus(ctx, jobID, StepExtracting, models.StepCompleted); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	// 3. Assemble markup
	if err := s.updateStepStatus(ctx, jobID, StepAssembling, models.StepInProgress); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	markup := s.assembler.Assemble(sections)

	if err := s.updateStepStatus(ctx, jobID, StepAssembling, models.StepCompleted); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	// 4. Render and store the artifact
	if err := s.updateStepStatus(ctx, jobID, StepRendering, models.StepInProgress); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	artifact, err := s.renderer.Render(ctx, markup)
	if err != nil {
		s.failStep(ctx, jobID, StepRendering, "failed to render document: "+err.Error())
		return fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	file := &models.File{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		Filename:       firFilenameBase + artifact.Extension,
		MimeType:       artifact.ContentType,
		Size:           int64(len(artifact.Data)),
	}

	file.StoragePath, err = s.storage.Upload(ctx, file.ID, file.Filename, bytes.NewReader(artifact.Data))
	if err != nil {
		s.failStep(ctx, jobID, StepRendering, "failed to store document: "+err.Error())
		return fmt.Errorf("failed to store document: %w", err)
	}

	if err := s.files.Create(ctx, file); err != nil {
		s.discardArtifact(ctx, file, false)
		s.failStep(ctx, jobID, StepRendering, "failed to save file record: "+err.Error())
		return fmt.Errorf("failed to save file record: %w", err)
	}

	doc := &models.FIRDocument{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		JobID:          jobID,
		FileID:         &file.ID,
		RawText:        raw,
		Sections:       sections,
		Markup:         markup,
		Pages:          artifact.Pages,
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		s.discardArtifact(ctx, file, true)
		s.failStep(ctx, jobID, StepRendering, "failed to save document: "+err.Error())
		return fmt.Errorf("failed to save document: %w", err)
	}

	if err := s.updateStepStatus(ctx, jobID, StepRendering, models.StepCompleted); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	// 5. Mark job as completed
	if err := s.jobs.Complete(ctx, jobID, doc.ID); err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordDocument(ctx, string(models.JobStatusCompleted))
	}
	s.log.Info("FIR draft generated", logrus.Fields{
		"job_id":      jobID.String(),
		"document_id": doc.ID.String(),
		"pages":       doc.Pages,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func initializeSteps() models.GenerationSteps {
	return models.GenerationSteps{
		{Name: StepExtracting, Status: models.StepPending, Description: "Reading the conversation for incident details"},
		{Name: StepAssembling, Status: models.StepPending, Description: "Filling the FIR template"},
		{Name: StepRendering, Status: models.StepPending, Description: "Producing the shareable document"},
	}
}

// updateStepStatus updates the status of a specific step in the generation job
func (s *FIRService) updateStepStatus(ctx context.Context, jobID uuid.UUID, stepName, status string) error {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return err
	}

	steps := job.Steps
	var currentStep string
	if job.CurrentStep != nil {
		currentStep = *job.CurrentStep
	}

	if i := steps.StepIndex(stepName); i >= 0 {
		steps[i].Status = status
		if status == models.StepInProgress {
			currentStep = stepName
		}
	}

	return s.jobs.UpdateProgress(ctx, jobID, currentStep, steps)
}

// discardArtifact removes a stored file that no document will reference
func (s *FIRService) discardArtifact(ctx context.Context, file *models.File, hasRecord bool) {
	if hasRecord {
		if err := s.files.Delete(ctx, file.ID); err != nil {
			s.log.Warn("failed to delete orphaned file record", logrus.Fields{
				"file_id": file.ID.String(),
				"error":   err.Error(),
			})
		}
	}
	if err := s.storage.Delete(ctx, file.StoragePath); err != nil {
		s.log.Warn("failed to delete orphaned file", logrus.Fields{
			"storage_path": file.StoragePath,
			"error":        err.Error(),
		})
	}
}

// failStep marks the step and then the job as failed
func (s *FIRService) failStep(ctx context.Context, jobID uuid.UUID, stepName, errorMessage string) {
	if err := s.updateStepStatus(ctx, jobID, stepName, models.StepFailed); err != nil {
		s.log.Warn("failed to mark step failed", logrus.Fields{
			"job_id": jobID.String(),
			"step":   stepName,
			"error":  err.Error(),
		})
	}
	s.markJobFailed(ctx, jobID, errorMessage)
}

// markJobFailed marks a job as failed with an error message
func (s *FIRService) markJobFailed(ctx context.Context, jobID uuid.UUID, errorMessage string) {
	if s.metrics != nil {
		s.metrics.RecordDocument(ctx, string(models.JobStatusFailed))
	}
	if err := s.jobs.Fail(ctx, jobID, errorMessage); err != nil {
		s.log.Error("failed to mark job failed", logrus.Fields{
			"job_id": jobID.String(),
			"error":  err.Error(),
		})
	}
}

package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	tport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
)

// DefaultSpeakerDescription is sent with a task when no description is configured
const DefaultSpeakerDescription = "A female speaker delivers a slightly expressive and animated speech with a moderate speed and pitch. " +
	"The recording is of very high quality, with the speaker's voice sounding clear and very close up."

// GenerationStatus defines possible status values for a generation record.
// It is deliberately a separate type from TransactionStatus.
type GenerationStatus string

// GenerationStatus constants
const (
	GenerationProcessing GenerationStatus = "PROCESSING"
	GenerationDone       GenerationStatus = "DONE"
	GenerationFailed     GenerationStatus = "FAILED"
)

// IsTerminal reports whether no further transition is allowed from s
func (s GenerationStatus) IsTerminal() bool {
	return s == GenerationDone || s == GenerationFailed
}

// GenerationRecord tracks one requested audio generation
type GenerationRecord struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Text           string
	TokensSpent    int64
	Status         GenerationStatus
	ResultLocation *string
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewGenerationRecord creates a record in PROCESSING for an already paid request
func NewGenerationRecord(userID uuid.UUID, text string, tokensSpent int64, timeProvider tport.TimeProvider) (*GenerationRecord, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrInvalidUserID
	}
	if strings.TrimSpace(text) == "" {
		return nil, errs.ErrEmptyText
	}
	if tokensSpent <= 0 {
		return nil, fmt.Errorf("%w: tokens spent %d", errs.ErrInvalidAmount, tokensSpent)
	}

	now := timeProvider.Now()
	return &GenerationRecord{
		ID:          uuid.New(),
		UserID:      userID,
		Text:        text,
		TokensSpent: tokensSpent,
		Status:      GenerationProcessing,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsTerminal returns true once the generation is DONE or FAILED
func (g *GenerationRecord) IsTerminal() bool {
	return g.Status.IsTerminal()
}

// MarkProcessing is a no-op for a PROCESSING record and fails for a terminal one
func (g *GenerationRecord) MarkProcessing(timeProvider tport.TimeProvider) error {
	if g.IsTerminal() {
		return fmt.Errorf("%w: generation %s is already %s", errs.ErrInvalidStatusTransition, g.ID, g.Status)
	}
	g.Status = GenerationProcessing
	g.UpdatedAt = timeProvider.Now()
	return nil
}

// MarkDone stores the artifact location and completes the record
func (g *GenerationRecord) MarkDone(location string, timeProvider tport.TimeProvider) error {
	if g.Status != GenerationProcessing {
		return fmt.Errorf("%w: generation %s is %s", errs.ErrInvalidStatusTransition, g.ID, g.Status)
	}
	g.ResultLocation = &location
	g.Status = GenerationDone
	g.UpdatedAt = timeProvider.Now()
	return nil
}

// MarkFailed completes the record without an artifact
func (g *GenerationRecord) MarkFailed(reason string, timeProvider tport.TimeProvider) error {
	if g.Status != GenerationProcessing {
		return fmt.Errorf("%w: generation %s is %s", errs.ErrInvalidStatusTransition, g.ID, g.Status)
	}
	g.ErrorMessage = reason
	g.Status = GenerationFailed
	g.UpdatedAt = timeProvider.Now()
	return nil
}

// ParseGenerationStatus converts a stored value back into a GenerationStatus
func ParseGenerationStatus(s string) (GenerationStatus, error) {
	switch status := GenerationStatus(s); status {
	case GenerationProcessing, GenerationDone, GenerationFailed:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %s", errs.ErrInvalidStatus, s)
	}
}

// GenerationTask is the message handed to the worker pool for one GenerationRecord
type GenerationTask struct {
	TaskID       string    `json:"task_id"`
	GenerationID string    `json:"generation_id"`
	UserID       string    `json:"user_id"`
	Text         string    `json:"text"`
	TokensSpent  int64     `json:"tokens_spent"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewGenerationTask builds the dispatch message for record with a fresh task id
func NewGenerationTask(record *GenerationRecord, description string, timeProvider tport.TimeProvider) GenerationTask {
	if strings.TrimSpace(description) == "" {
		description = DefaultSpeakerDescription
	}
	return GenerationTask{
		TaskID:       uuid.NewString(),
		GenerationID: record.ID.String(),
		UserID:       record.UserID.String(),
		Text:         record.Text,
		TokensSpent:  record.TokensSpent,
		Description:  description,
		CreatedAt:    timeProvider.Now(),
	}
}

// Validate checks the fields a worker needs before it can run the task
func (t GenerationTask) Validate() (uuid.UUID, error) {
	if t.GenerationID == "" {
		return uuid.Nil, fmt.Errorf("%w: generation_id", errs.ErrMissingField)
	}
	if strings.TrimSpace(t.Text) == "" {
		return uuid.Nil, fmt.Errorf("%w: text", errs.ErrMissingField)
	}
	id, err := uuid.Parse(t.GenerationID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: generation_id %q", errs.ErrMalformedTask, t.GenerationID)
	}
	return id, nil
}

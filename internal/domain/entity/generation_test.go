package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	coremocks "github.com/amirhossein-jamali/tts-ledger/mocks/port/core"
)

func TestGenerationRecordLifecycle(t *testing.T) {
	mockTime := coremocks.NewMockTimeProvider(t).Frozen(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))

	newRecord := func(t *testing.T) *GenerationRecord {
		rec, err := NewGenerationRecord(uuid.New(), "hello world", 4, mockTime)
		require.NoError(t, err)
		return rec
	}

	t.Run("Starts in PROCESSING", func(t *testing.T) {
		rec := newRecord(t)
		assert.Equal(t, GenerationProcessing, rec.Status)
		assert.Nil(t, rec.ResultLocation)
	})

	t.Run("Processing is idempotent", func(t *testing.T) {
		rec := newRecord(t)
		require.NoError(t, rec.MarkProcessing(mockTime))
		require.NoError(t, rec.MarkProcessing(mockTime))
		assert.Equal(t, GenerationProcessing, rec.Status)
	})

	t.Run("Done stores the location", func(t *testing.T) {
		rec := newRecord(t)
		require.NoError(t, rec.MarkDone("output/x.wav", mockTime))
		require.NotNil(t, rec.ResultLocation)
		assert.Equal(t, "output/x.wav", *rec.ResultLocation)
	})

	t.Run("Terminal status never changes", func(t *testing.T) {
		done := newRecord(t)
		require.NoError(t, done.MarkDone("a.wav", mockTime))
		assert.ErrorIs(t, done.MarkFailed("late", mockTime), errs.ErrInvalidStatusTransition)
		assert.ErrorIs(t, done.MarkProcessing(mockTime), errs.ErrInvalidStatusTransition)
		assert.Equal(t, GenerationDone, done.Status)

		failed := newRecord(t)
		require.NoError(t, failed.MarkFailed("engine down", mockTime))
		assert.ErrorIs(t, failed.MarkDone("b.wav", mockTime), errs.ErrInvalidStatusTransition)
		assert.Equal(t, GenerationFailed, failed.Status)
		assert.Nil(t, failed.ResultLocation)
	})

	t.Run("Validation", func(t *testing.T) {
		_, err := NewGenerationRecord(uuid.New(), "   ", 2, mockTime)
		assert.ErrorIs(t, err, errs.ErrEmptyText)
		_, err = NewGenerationRecord(uuid.Nil, "text", 2, mockTime)
		assert.ErrorIs(t, err, errs.ErrInvalidUserID)
		_, err = NewGenerationRecord(uuid.New(), "text", 0, mockTime)
		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	})
}

func TestGenerationTask(t *testing.T) {
	created := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	mockTime := coremocks.NewMockTimeProvider(t).Frozen(created)
	rec, err := NewGenerationRecord(uuid.New(), "read this aloud", 6, mockTime)
	require.NoError(t, err)

	task := NewGenerationTask(rec, "", mockTime)

	t.Run("Task id differs from generation id", func(t *testing.T) {
		assert.NotEmpty(t, task.TaskID)
		assert.NotEqual(t, rec.ID.String(), task.TaskID)
		assert.Equal(t, rec.ID.String(), task.GenerationID)
		assert.Equal(t, DefaultSpeakerDescription, task.Description)
	})

	t.Run("Wire shape", func(t *testing.T) {
		body, err := json.Marshal(task)
		require.NoError(t, err)

		var fields map[string]any
		require.NoError(t, json.Unmarshal(body, &fields))
		for _, key := range []string{"task_id", "generation_id", "user_id", "text", "tokens_spent", "description", "created_at"} {
			assert.Contains(t, fields, key)
		}
		assert.EqualValues(t, 6, fields["tokens_spent"])
	})

	t.Run("Validate", func(t *testing.T) {
		id, err := task.Validate()
		require.NoError(t, err)
		assert.Equal(t, rec.ID, id)

		missingID := task
		missingID.GenerationID = ""
		_, err = missingID.Validate()
		assert.ErrorIs(t, err, errs.ErrMissingField)

		missingText := task
		missingText.Text = ""
		_, err = missingText.Validate()
		assert.ErrorIs(t, err, errs.ErrMissingField)

		badID := task
		badID.GenerationID = "not-a-uuid"
		_, err = badID.Validate()
		assert.ErrorIs(t, err, errs.ErrMalformedTask)
	})
}

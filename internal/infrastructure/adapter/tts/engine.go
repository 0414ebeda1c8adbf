package tts

import (
	"context"
	"fmt"

	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/tts-ledger/internal/domain/port/generation"
)

// Synthesizer produces WAV audio for a text
type Synthesizer interface {
	GenerateSpeech(ctx context.Context, text, description string) ([]byte, error)
}

// Engine runs synthesis on the speech server and stores the audio as <generation_id>.wav
type Engine struct {
	synth        Synthesizer
	artifacts    generation.ArtifactStore
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

var _ generation.Engine = (*Engine)(nil)

// NewEngine creates an Engine
func NewEngine(
	synth Synthesizer,
	artifacts generation.ArtifactStore,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Engine {
	return &Engine{
		synth:        synth,
		artifacts:    artifacts,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Synthesize returns the artifact location. Every failure wraps ErrGenerationEngineFailure.
func (e *Engine) Synthesize(ctx context.Context, req generation.Request) (string, error) {
	start := e.timeProvider.Now()

	audio, err := e.synth.GenerateSpeech(ctx, req.Text, req.Description)
	if err != nil {
		return "", fmt.Errorf("%w: synthesize: %s", errs.ErrGenerationEngineFailure, err.Error())
	}

	location, err := e.artifacts.Save(ctx, req.GenerationID.String()+".wav", audio)
	if err != nil {
		return "", fmt.Errorf("%w: store audio: %s", errs.ErrGenerationEngineFailure, err.Error())
	}

	e.logger.Info("Audio generated", map[string]any{
		"generation_id": req.GenerationID.String(),
		"bytes":         len(audio),
		"location":      location,
		"duration_ms":   e.timeProvider.Since(start).Std().Milliseconds(),
	})
	return location, nil
}

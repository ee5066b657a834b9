package replay

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
)

var (
	ErrSpeechUnavailable = errors.New("speech input is not available")
	ErrNotListening      = errors.New("speech input was not started")
)

// SpeechInput is a push-to-talk source of dictated text.
type SpeechInput interface {
	Available() bool
	Start(ctx context.Context) error
	// Stop ends the capture and returns the final transcript.
	Stop(ctx context.Context) (string, error)
}

// NoSpeech is used where no capture device exists.
type NoSpeech struct{}

func (NoSpeech) Available() bool                      { return false }
func (NoSpeech) Start(context.Context) error          { return ErrSpeechUnavailable }
func (NoSpeech) Stop(context.Context) (string, error) { return "", ErrSpeechUnavailable }

// Transcriber converts a recorded audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// FileSpeech "records" by pointing at an audio file and transcribes it on Stop.
type FileSpeech struct {
	transcriber Transcriber

	mu        sync.Mutex
	source    string
	listening bool
}

func NewFileSpeech(t Transcriber) *FileSpeech {
	return &FileSpeech{transcriber: t}
}

// SetSource selects the audio file the next capture will use.
func (f *FileSpeech) SetSource(path string) {
	f.mu.Lock()
	f.source = path
	f.mu.Unlock()
}

func (f *FileSpeech) Available() bool {
	return f.transcriber != nil
}

func (f *FileSpeech) Start(ctx context.Context) error {
	if !f.Available() {
		return ErrSpeechUnavailable
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.source == "" {
		return errors.New("no audio source selected")
	}
	if _, err := os.Stat(f.source); err != nil {
		return fmt.Errorf("audio source: %w", err)
	}
	f.listening = true
	return nil
}

func (f *FileSpeech) Stop(ctx context.Context) (string, error) {
	f.mu.Lock()
	if !f.listening {
		f.mu.Unlock()
		return "", ErrNotListening
	}
	f.listening = false
	source := f.source
	f.mu.Unlock()

	return f.transcriber.Transcribe(ctx, source)
}

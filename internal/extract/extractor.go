package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	assistantName         = "Document Analyzer"
	assistantInstructions = "You are a document analyzer. Analyze, extract, and combine all information " +
		"from the provided files, preserving order. Return the result as plain text."
	userPrompt = "Please combine and analyze these uploaded documents."
)

// Extractor extracts combined plain text from documents through the OpenAI
// assistants API with the file retrieval tool. One ExtractText call is one
// assistant run; cancellation comes from the caller's context only.
type Extractor struct {
	client       *openai.Client
	model        string
	pollInterval time.Duration
	logger       *zap.Logger
}

// New creates an extractor. model falls back to gpt-4o when empty.
func New(apiKey, model string, logger *zap.Logger) *Extractor {
	if model == "" {
		model = "gpt-4o"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		client:       openai.NewClient(apiKey),
		model:        model,
		pollInterval: 2 * time.Second,
		logger:       logger,
	}
}

// ExtractText uploads the given files, runs the analyzer assistant over
// them, and returns its plain-text answer.
func (e *Extractor) ExtractText(ctx context.Context, paths []string) (string, error) {
	if len(paths) == 0 {
		return "", fmt.Errorf("no files provided")
	}

	fileIDs := make([]string, 0, len(paths))
	for _, path := range paths {
		file, err := e.client.CreateFile(ctx, openai.FileRequest{
			FileName: filepath.Base(path),
			FilePath: path,
			Purpose:  "assistants",
		})
		if err != nil {
			return "", fmt.Errorf("failed to upload %s: %w", filepath.Base(path), err)
		}
		fileIDs = append(fileIDs, file.ID)
	}

	name := assistantName
	instructions := assistantInstructions
	assistant, err := e.client.CreateAssistant(ctx, openai.AssistantRequest{
		Model:        e.model,
		Name:         &name,
		Instructions: &instructions,
		Tools:        []openai.AssistantTool{{Type: openai.AssistantToolTypeRetrieval}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create assistant: %w", err)
	}

	thread, err := e.client.CreateThread(ctx, openai.ThreadRequest{
		Messages: []openai.ThreadMessage{
			{
				Role:    openai.ThreadMessageRoleUser,
				Content: userPrompt,
				FileIDs: fileIDs,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create thread: %w", err)
	}

	run, err := e.client.CreateRun(ctx, thread.ID, openai.RunRequest{
		AssistantID: assistant.ID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to start run: %w", err)
	}

	if err := e.waitForRun(ctx, thread.ID, run.ID); err != nil {
		return "", err
	}

	return e.latestAnswer(ctx, thread.ID)
}

// waitForRun polls the run until it reaches a terminal status.
func (e *Extractor) waitForRun(ctx context.Context, threadID, runID string) error {
	for {
		run, err := e.client.RetrieveRun(ctx, threadID, runID)
		if err != nil {
			return fmt.Errorf("failed to poll run: %w", err)
		}

		switch run.Status {
		case openai.RunStatusCompleted:
			return nil
		case openai.RunStatusQueued, openai.RunStatusInProgress:
			e.logger.Debug("assistant run pending", zap.String("status", string(run.Status)))
		default:
			return fmt.Errorf("assistant run ended with status %s", run.Status)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(e.pollInterval):
		}
	}
}

// latestAnswer returns the text of the newest message in the thread, which
// after a completed run is the assistant's answer.
func (e *Extractor) latestAnswer(ctx context.Context, threadID string) (string, error) {
	limit := 1
	messages, err := e.client.ListMessage(ctx, threadID, &limit, nil, nil, nil)
	if err != nil {
		return "", fmt.Errorf("failed to list messages: %w", err)
	}

	if len(messages.Messages) == 0 {
		return "", fmt.Errorf("assistant produced no messages")
	}
	for _, content := range messages.Messages[0].Content {
		if content.Text != nil {
			return content.Text.Value, nil
		}
	}

	return "", fmt.Errorf("assistant produced no text content")
}

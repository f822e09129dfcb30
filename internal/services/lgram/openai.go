package lgram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultModel is the default model to use
	DefaultModel = "gpt-4o-mini"
	// DefaultBaseURL is the default API base URL
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for engine calls
	DefaultTimeout = 30 * time.Second
)

// OpenAIEngine implements the Generator interface using OpenAI's API
type OpenAIEngine struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIEngine creates a new OpenAI-backed generation engine
func NewOpenAIEngine(apiKey, baseURL, model string, logger *zap.Logger, debugMode bool) *OpenAIEngine {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIEngine{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

// GenerateText produces numSentences sentences of roughly length words each,
// seeded by inputWords.
func (e *OpenAIEngine) GenerateText(ctx context.Context, inputWords []string, numSentences, length int) (string, error) {
	if len(inputWords) == 0 {
		return "", &GenerationError{Op: "generate_text", Message: "input words are required"}
	}

	prompt := fmt.Sprintf(
		"Continue the following text naturally. Write exactly %d sentences of roughly %d words each, in the same register as the input. Respond with the generated text only.\n\nInput: %s",
		numSentences, length, strings.Join(inputWords, " "),
	)
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage("You are a statistical language model that continues text from seed words."),
		openai.UserMessage(prompt),
	}
	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(e.model),
		Messages: messages,
	}

	content, err := e.complete(ctx, "generate_text", req)
	if err != nil {
		return "", err
	}
	return content, nil
}

// CorrectGrammar returns a grammar-corrected version of text.
func (e *OpenAIEngine) CorrectGrammar(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", &GenerationError{Op: "correct_grammar", Message: "text is required"}
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage("Correct the grammar of the user's text. Preserve wording and meaning; respond with the corrected text only."),
		openai.UserMessage(text),
	}
	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(e.model),
		Messages: messages,
	}

	content, err := e.complete(ctx, "correct_grammar", req)
	if err != nil {
		return "", err
	}
	return content, nil
}

func (e *OpenAIEngine) complete(ctx context.Context, op string, req openai.ChatCompletionNewParams) (string, error) {
	start := time.Now()
	resp, err := e.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)

	if err != nil {
		if e.debugMode {
			e.logger.Debug("engine_api_error",
				zap.String("operation", op),
				zap.String("model", e.model),
				zap.Error(err),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", &GenerationError{Op: op, Message: "the generation engine timed out", Err: err}
		}
		return "", &GenerationError{Op: op, Message: "the generation engine is unavailable", Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &GenerationError{Op: op, Message: "the generation engine returned no output"}
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if e.debugMode {
		e.logger.Debug("engine_api_response",
			zap.String("operation", op),
			zap.String("model", e.model),
			zap.Int("response_length", len(content)),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}
	return content, nil
}

// Ensure the engine satisfies the Generator contract
var _ Generator = (*OpenAIEngine)(nil)

package llm

import (
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrContextLength indicates the prompt exceeded the model's context window.
// Callers detect it with errors.Is instead of matching provider error text;
// the matching is confined to classifyError below.
var ErrContextLength = errors.New("model context length exceeded")

// classifyError maps raw provider errors to structured error kinds.
// Unrecognized errors pass through unchanged.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == "context_length_exceeded" {
			return fmt.Errorf("%w: %v", ErrContextLength, err)
		}
	}

	// Some providers only report the condition in the message body.
	if strings.Contains(strings.ToLower(err.Error()), "maximum context length") {
		return fmt.Errorf("%w: %v", ErrContextLength, err)
	}

	return err
}

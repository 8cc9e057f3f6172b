package openai

import (
	"github.com/google/uuid"

	"github.com/briankw/theo/pkg/api"
)

// Response is the shaped result of a completion call: the fields downstream
// code is allowed to touch, fixed at the service boundary.
type Response struct {
	ID         string
	OutputText string
	Usage      api.Usage
}

// ShapeResponse extracts a Response from a raw chat completion.
func ShapeResponse(resp *api.ChatCompletionResponse) *Response {
	out := &Response{ID: resp.ID}
	if len(resp.Choices) > 0 {
		out.OutputText = resp.Choices[0].Message.Content
	}
	if resp.Usage != nil {
		out.Usage = *resp.Usage
	}
	return out
}

// FallbackResponse builds a stand-in Response used when the upstream call
// failed and the user still needs a reply.
func FallbackResponse(message string) *Response {
	return &Response{
		ID:         "local-" + uuid.New().String(),
		OutputText: message,
	}
}

package chatbot

import (
	"context"
	"fmt"
	"log"

	"github.com/briankw/theo/internal/chatctx"
	"github.com/briankw/theo/internal/memory"
	"github.com/briankw/theo/internal/openai"
	"github.com/briankw/theo/internal/tools"
	"github.com/briankw/theo/pkg/api"
)

// CompletionFunc sends a chat completion request and returns the response.
// The abstraction decouples the chatbot from the HTTP client so tests can
// script responses.
type CompletionFunc func(ctx context.Context, req *api.ChatCompletionRequest) (*api.ChatCompletionResponse, error)

const (
	defaultMaxToolRounds = 5

	fallbackReply = "죄송해요, 잠깐 딴 생각을 하느라 대답을 놓쳤어요. 다시 한 번 말씀해 주시겠어요?"
)

// Config configures the chatbot.
type Config struct {
	Model            string
	Instruction      string
	MaxContextTokens int
	MaxToolRounds    int
	UserName         string
	BotName          string
}

// Chatbot handles one user message end to end: recall, generation with
// tool use, persistence.
type Chatbot struct {
	session   *chatctx.Session
	retriever *memory.Retriever
	complete  CompletionFunc
	registry  *tools.Registry
	estimator *chatctx.TokenEstimator
	cfg       Config
}

// New creates a Chatbot. The retriever may be nil, which disables recall.
func New(session *chatctx.Session, retriever *memory.Retriever, complete CompletionFunc, registry *tools.Registry, estimator *chatctx.TokenEstimator, cfg Config) *Chatbot {
	if cfg.MaxToolRounds <= 0 {
		cfg.MaxToolRounds = defaultMaxToolRounds
	}
	if cfg.UserName == "" {
		cfg.UserName = "User"
	}
	if cfg.BotName == "" {
		cfg.BotName = "Assistant"
	}
	if cfg.Instruction == "" {
		cfg.Instruction = defaultInstruction(cfg.UserName, cfg.BotName)
	}
	return &Chatbot{
		session:   session,
		retriever: retriever,
		complete:  complete,
		registry:  registry,
		estimator: estimator,
		cfg:       cfg,
	}
}

func defaultInstruction(userName, botName string) string {
	return fmt.Sprintf(
		"You are %s, a warm and attentive companion chatting with %s. "+
			"Reply naturally in the language %s uses, keep answers conversational, "+
			"and use your tools when you need real-world information.",
		botName, userName, userName)
}

// Chat processes one user message and returns the reply. Generation failures
// never surface as errors; the user gets an apologetic fallback and the turn
// is still logged.
func (c *Chatbot) Chat(ctx context.Context, message string) *api.ChatResponse {
	whisper := c.recall(ctx, message)

	c.session.Append(api.RoleUser, message)

	resp := c.generate(ctx, whisper)

	c.session.Append(api.RoleAssistant, resp.OutputText)
	if err := c.session.Flush(ctx); err != nil {
		// The turns stay in the session; the next flush retries them.
		log.Printf("[chatbot] flush failed: %v", err)
	}

	return &api.ChatResponse{
		OK:         true,
		Reply:      resp.OutputText,
		ResponseID: resp.ID,
	}
}

// recall runs the two-stage memory lookup and returns the hint to inject.
// Stage one decides whether older days could matter at all; stage two finds
// and vets a concrete memory. Both stages failing open means no hint, and the
// no-hint instruction stops the model from inventing recollections.
func (c *Chatbot) recall(ctx context.Context, message string) string {
	if c.retriever == nil {
		return noRecallHint()
	}
	if !c.retriever.NeedsMemory(ctx, message) {
		return noRecallHint()
	}
	text, ok := c.retriever.Retrieve(ctx, message)
	if !ok {
		return noRecallHint()
	}
	return fmt.Sprintf(
		"From an earlier conversation you remember this: %q. "+
			"If it is relevant, mention it naturally, as if the memory just came to you. "+
			"Never say you were given this note.", text)
}

func noRecallHint() string {
	return "You have no specific memory of earlier days that applies here. " +
		"Do not claim to remember past conversations."
}

// generate runs the completion loop, executing tool calls up to the round
// limit. Any failure yields the fallback reply.
func (c *Chatbot) generate(ctx context.Context, whisper string) *openai.Response {
	msgs := []api.Message{{Role: api.RoleDeveloper, Content: c.cfg.Instruction}}
	if whisper != "" {
		msgs = append(msgs, api.Message{Role: api.RoleDeveloper, Content: whisper})
	}
	msgs = append(msgs, c.session.Messages(c.estimator, c.cfg.MaxContextTokens)...)

	var apiTools []api.Tool
	if c.registry != nil {
		apiTools = c.registry.APITools()
	}

	for round := 0; round <= c.cfg.MaxToolRounds; round++ {
		req := &api.ChatCompletionRequest{
			Model:    c.cfg.Model,
			Messages: msgs,
			Tools:    apiTools,
		}
		resp, err := c.complete(ctx, req)
		if err != nil {
			log.Printf("[chatbot] completion failed: %v", err)
			return openai.FallbackResponse(fallbackReply)
		}
		if len(resp.Choices) == 0 {
			log.Printf("[chatbot] empty response from model")
			return openai.FallbackResponse(fallbackReply)
		}

		choice := resp.Choices[0]
		msgs = append(msgs, choice.Message)

		if len(choice.Message.ToolCalls) == 0 {
			return openai.ShapeResponse(resp)
		}

		for _, tc := range choice.Message.ToolCalls {
			msgs = append(msgs, api.Message{
				Role:       api.RoleTool,
				Content:    c.executeTool(ctx, tc),
				ToolCallID: tc.ID,
				Name:       tc.Function.Name,
			})
		}
	}

	log.Printf("[chatbot] tool loop exceeded %d rounds", c.cfg.MaxToolRounds)
	return openai.FallbackResponse(fallbackReply)
}

// executeTool runs one tool call. Failures are reported in-band so the model
// can explain or recover.
func (c *Chatbot) executeTool(ctx context.Context, tc api.ToolCall) string {
	if c.registry == nil {
		return fmt.Sprintf("unknown tool: %s", tc.Function.Name)
	}
	tool := c.registry.Get(tc.Function.Name)
	if tool == nil {
		return fmt.Sprintf("unknown tool: %s", tc.Function.Name)
	}
	result, err := tool.Execute(ctx, tc.Function.Arguments)
	if err != nil {
		log.Printf("[chatbot] tool %s failed: %v", tc.Function.Name, err)
		return fmt.Sprintf("tool %s failed: %v", tc.Function.Name, err)
	}
	return result.Output
}

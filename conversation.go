package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shafreeck/studio/chat"
)

type ChatRole string

const (
	User      ChatRole = "user"
	System    ChatRole = "system"
	Assistant ChatRole = "assistant"
)

type Message struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// ModelOptions are sent with every question.
type ModelOptions struct {
	Model       string  `json:"model" yaml:"model,omitempty" cortana:"--model, -m, studio-chat, the model answering the conversation"`
	Temperature float32 `json:"temperature" yaml:"temperature,omitempty" cortana:"--temperature, -, 1, sampling temperature between 0 and 2"`
	MaxTokens   int     `json:"max_tokens,omitempty" yaml:"max-tokens,omitempty" cortana:"--max-tokens, -, 0, the maximum number of tokens to generate"`
	Stream      bool    `json:"stream" yaml:"stream,omitempty" cortana:"--stream, -, true, stream the answer as it is generated"`
}

type Question struct {
	ModelOptions
	ConversationID string     `json:"conversation_id,omitempty"`
	Messages       []*Message `json:"messages"`
}

func (q *Question) New() any { return &Question{} }

type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type Answer struct {
	ID      string `json:"id"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Usage   Usage  `json:"usage"`
	Choices []struct {
		Message      *Message `json:"message"`
		FinishReason string   `json:"finish_reason"`
		Index        int      `json:"index"`
	} `json:"choices"`
	Error APIError `json:"error"`
}

func (a *Answer) New() any { return &Answer{} }

// AnswerChunk is one streamed event. Only the fields the client shows
// are decoded, the rest of the event is ignored.
type AnswerChunk struct {
	Content string
	Error   APIError
}

func (c *AnswerChunk) New() any { return &AnswerChunk{} }

func (c *AnswerChunk) Unmarshal(data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("invalid event: %s", data)
	}
	if msg := chat.ErrorMessage(data); msg != "" {
		c.Error = APIError{Message: msg, Code: chat.ErrorCode(data)}
		return nil
	}
	c.Content = chat.DeltaText(data)
	return nil
}

func (c *AnswerChunk) SetError(err error) {
	c.Error.Message = err.Error()
	c.Error.Type = "client_error"
}

// Text is the callback StreamModel uses to pull text out of a chunk.
func (c *AnswerChunk) Text() (string, error) {
	if c.Error.Message != "" {
		if c.Error.Code != "" {
			return "", fmt.Errorf("%s: %s", c.Error.Code, c.Error.Message)
		}
		return "", fmt.Errorf("%s", c.Error.Message)
	}
	return c.Content, nil
}

// Conversation is a server side conversation as listed by the API.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewConversationClient(api *chat.REST) *chat.Resource[Conversation] {
	return chat.NewResource[Conversation](api, "conversations")
}

func NewChatClient(cli *http.Client, url string, auth chat.Authorizer) chat.Chat[*Question, *Answer, *AnswerChunk] {
	return chat.New[*Question, *Answer, *AnswerChunk](cli, url, auth)
}

// Package chat forwards reader questions to the external question-answering
// backend and keeps a per-user history of the exchanges.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/matiasleandrokruk/bookcompanion/internal/domain/profile"
	"github.com/matiasleandrokruk/bookcompanion/internal/infra/eventbus"
	"github.com/matiasleandrokruk/bookcompanion/internal/infra/logging"
)

// TopicExchanged carries an Exchange after every successful answer.
const TopicExchanged = "chat.exchanged"

// FallbackMessage is returned to the reader when the backend fails.
const FallbackMessage = "Sorry, something went wrong."

var (
	ErrEmptyMessage       = errors.New("message is required")
	ErrServiceUnavailable = errors.New("chat service unavailable")
)

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is what the reader sends.
type Request struct {
	Message      string    `json:"message"`
	ChatHistory  []Message `json:"chat_history,omitempty"`
	SelectedText string    `json:"selected_text,omitempty"`
}

// BackendRequest is what the question-answering backend receives.
type BackendRequest struct {
	Message      string              `json:"message"`
	ChatHistory  []Message           `json:"chat_history"`
	SelectedText string              `json:"selected_text,omitempty"`
	UserProfile  *profile.Background `json:"user_profile,omitempty"`
	UserID       string              `json:"user_id,omitempty"`
}

// Response is the answer returned to the reader.
type Response struct {
	Response        string    `json:"response"`
	SourceDocuments []string  `json:"source_documents"`
	ChatHistory     []Message `json:"chat_history"`
}

// Exchange is one stored question/answer pair.
type Exchange struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	UserMessage      string    `json:"userMessage"`
	AssistantMessage string    `json:"assistantMessage"`
	SelectedText     string    `json:"selectedText,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Client talks to the question-answering backend.
type Client interface {
	Ask(ctx context.Context, req BackendRequest) (*Response, error)
}

// Service answers reader questions through a Client.
type Service struct {
	client Client
	bus    eventbus.EventBus
	log    *logging.Logger
	now    func() time.Time
}

// NewService creates a Service. bus may be nil, in which case exchanges are
// not published.
func NewService(client Client, bus eventbus.EventBus, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{client: client, bus: bus, log: log, now: time.Now}
}

// Ask forwards req with the reader's profile. On backend failure it returns
// a response carrying FallbackMessage together with an error wrapping
// ErrServiceUnavailable.
func (s *Service) Ask(ctx context.Context, userID string, bg *profile.Background, req Request) (*Response, error) {
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return nil, ErrEmptyMessage
	}
	history := req.ChatHistory
	if history == nil {
		history = []Message{}
	}

	resp, err := s.client.Ask(ctx, BackendRequest{
		Message:      msg,
		ChatHistory:  history,
		SelectedText: req.SelectedText,
		UserProfile:  bg,
		UserID:       userID,
	})
	if err != nil {
		s.log.Warn("chat backend failed", "user_id", userID, "error", err)
		fallback := &Response{
			Response:        FallbackMessage,
			SourceDocuments: []string{},
			ChatHistory:     history,
		}
		if !errors.Is(err, ErrServiceUnavailable) {
			err = errors.Join(ErrServiceUnavailable, err)
		}
		return fallback, err
	}

	if resp.SourceDocuments == nil {
		resp.SourceDocuments = []string{}
	}
	if len(resp.ChatHistory) == 0 {
		resp.ChatHistory = append(append([]Message{}, history...),
			Message{Role: "user", Content: msg},
			Message{Role: "assistant", Content: resp.Response},
		)
	}

	if s.bus != nil && userID != "" {
		s.bus.Publish(TopicExchanged, Exchange{
			UserID:           userID,
			UserMessage:      msg,
			AssistantMessage: resp.Response,
			SelectedText:     req.SelectedText,
			CreatedAt:        s.now().UTC(),
		})
	}
	return resp, nil
}

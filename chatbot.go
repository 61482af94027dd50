package swclient

import (
	"context"
	"net/http"
)

// ChatReply is the assistant's answer to one message.
type ChatReply struct {
	Response string `json:"response"`
}

// ChatbotService talks to the backend assistant.
type ChatbotService struct {
	client *Client
}

// Send posts message and returns the assistant's reply.
func (s *ChatbotService) Send(ctx context.Context, message string) (*ChatReply, error) {
	body := map[string]string{"message": message}
	r, err := sendJSON[ChatReply](ctx, s.client, http.MethodPost, apiPrefix+"/chatbot", body)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

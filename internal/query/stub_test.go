package query

import (
	"context"

	"github.com/hooplens/hooplens/internal/llm"
)

// stubChat is a scripted ChatClient: each call pops the next reply.
type stubChat struct {
	replies []string
	err     error

	calls    int
	received [][]llm.Message
	opts     []llm.ChatOptions
}

func (s *stubChat) Chat(ctx context.Context, messages []llm.Message, opts llm.ChatOptions) (string, error) {
	s.calls++
	s.received = append(s.received, messages)
	s.opts = append(s.opts, opts)
	if s.err != nil {
		return "", s.err
	}
	reply := ""
	if len(s.replies) > 0 {
		reply = s.replies[0]
		s.replies = s.replies[1:]
	}
	return reply, nil
}

func (s *stubChat) ModelName() string { return "stub" }

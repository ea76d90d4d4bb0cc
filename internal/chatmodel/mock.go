package chatmodel

import "context"

// MockEndpoint is a test double for Endpoint: configurable canned replies,
// call history, and optional error injection, so chat-probe tests never hit
// a real provider. Adapted from graph/model.MockChatModel.
type MockEndpoint struct {
	Replies []Reply
	Err     error
	Calls   []Message

	callIndex int
}

func (m *MockEndpoint) Invoke(ctx context.Context, messages []Message) (Reply, error) {
	if ctx.Err() != nil {
		return Reply{}, ctx.Err()
	}
	m.Calls = append(m.Calls, messages...)

	if m.Err != nil {
		return Reply{}, m.Err
	}
	if len(m.Replies) == 0 {
		return Reply{}, nil
	}

	idx := m.callIndex
	if idx >= len(m.Replies) {
		idx = len(m.Replies) - 1
	} else {
		m.callIndex++
	}
	return m.Replies[idx], nil
}

package testutil

import (
	"context"
	"fmt"
	"sync"
)

// MockDeliveryCaller records every message instead of calling the chat
// platform. FailFor makes sends to the listed recipients fail, so tests can
// check that delivery errors are tolerated.
type MockDeliveryCaller struct {
	mutex sync.Mutex

	DirectMessages map[string][]string
	GroupMessages  map[string][]string

	FailFor map[string]bool

	nextMessageID int
}

func NewMockDeliveryCaller() *MockDeliveryCaller {
	return &MockDeliveryCaller{
		DirectMessages: make(map[string][]string),
		GroupMessages:  make(map[string][]string),
		FailFor:        make(map[string]bool),
	}
}

func (m *MockDeliveryCaller) SendDirectMessage(ctx context.Context, userID, text string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.FailFor[userID] {
		return fmt.Errorf("cannot deliver to %s", userID)
	}

	m.DirectMessages[userID] = append(m.DirectMessages[userID], text)
	return nil
}

func (m *MockDeliveryCaller) PostGroupMessage(
	ctx context.Context, groupID, text string,
) (string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.FailFor[groupID] {
		return "", fmt.Errorf("cannot deliver to %s", groupID)
	}

	m.GroupMessages[groupID] = append(m.GroupMessages[groupID], text)
	m.nextMessageID++
	return fmt.Sprintf("%d", m.nextMessageID), nil
}

func (m *MockDeliveryCaller) EditGroupMessage(
	ctx context.Context, groupID, messageID, text string,
) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.FailFor[groupID] {
		return fmt.Errorf("cannot deliver to %s", groupID)
	}

	m.GroupMessages[groupID] = append(m.GroupMessages[groupID], text)
	return nil
}

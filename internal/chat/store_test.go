// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestStore_DispatchAndVersion(t *testing.T) {
	s := NewStore(NewState(nil), nil)
	assert.Equal(t, uint64(0), s.Version())

	got := s.Dispatch(
		NewConversation{Conversation: conv("a")},
		nil,
		PinConversation{ID: "a"},
	)

	assert.Equal(t, uint64(2), s.Version())
	c, ok := got.Current()
	require.True(t, ok)
	assert.True(t, c.Pinned)
}

func TestStore_StateIsACopy(t *testing.T) {
	s := NewStore(NewState(nil), nil)
	s.Dispatch(NewConversation{Conversation: conv("a")})

	snapshot := s.State()
	snapshot.Conversations[0].Title = "mutated"
	snapshot.AvailableModels[0] = "mutated"

	fresh := s.State()
	assert.Equal(t, "New conversation", fresh.Conversations[0].Title)
	assert.Equal(t, "Gemini 2.5", fresh.AvailableModels[0])
}

func TestStore_InitialStateIsCopied(t *testing.T) {
	initial := NewState([]string{"Gemma-3"})
	s := NewStore(initial, nil)

	initial.AvailableModels[0] = "changed"
	assert.Equal(t, []string{"Gemma-3"}, s.State().AvailableModels)
}

func TestStore_Update(t *testing.T) {
	s := NewStore(NewState(nil), nil)
	s.Dispatch(NewConversation{Conversation: conv("a")})

	var seen string
	got := s.Update(func(st State) []Action {
		seen = st.CurrentConversationID
		return []Action{UpdateConversationTitle{ID: seen, Title: "from update"}}
	})

	assert.Equal(t, "a", seen)
	c, _ := got.Conversation("a")
	assert.Equal(t, "from update", c.Title)

	// no actions, no version bump
	v := s.Version()
	s.Update(func(State) []Action { return nil })
	assert.Equal(t, v, s.Version())
}

func TestStore_SubscribeReceivesChangesInOrder(t *testing.T) {
	s := NewStore(NewState(nil), nil)
	changes, cancel := s.Subscribe(context.Background())
	defer cancel()

	s.Dispatch(
		NewConversation{Conversation: conv("a")},
		PinConversation{ID: "a"},
		DeleteConversation{ID: "a"},
	)

	want := []string{"new_conversation", "pin_conversation", "delete_conversation"}
	for i, kind := range want {
		select {
		case ch := <-changes:
			assert.Equal(t, uint64(i+1), ch.Version)
			assert.Equal(t, kind, ch.Action.Kind())
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for change %d", i+1)
		}
	}
}

func TestStore_CancelClosesChannel(t *testing.T) {
	s := NewStore(NewState(nil), nil)
	changes, cancel := s.Subscribe(context.Background())

	cancel()
	cancel() // idempotent

	_, open := <-changes
	assert.False(t, open)

	// dispatch after unsubscribe must not panic
	s.Dispatch(NewConversation{Conversation: conv("a")})
}

func TestStore_ContextEndsSubscription(t *testing.T) {
	s := NewStore(NewState(nil), nil)
	ctx, cancelCtx := context.WithCancel(context.Background())
	changes, cancel := s.Subscribe(ctx)
	defer cancel()

	cancelCtx()

	select {
	case _, open := <-changes:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("subscription not closed after context cancel")
	}
}

func TestStore_SlowSubscriberDropsChanges(t *testing.T) {
	s := NewStore(NewState(nil), nil)
	changes, cancel := s.Subscribe(context.Background())

	s.Dispatch(NewConversation{Conversation: conv("a")})
	for i := 0; i < subscriberBufferSize*2; i++ {
		s.Dispatch(PinConversation{ID: "a"})
	}

	cancel()

	n := 0
	for range changes {
		n++
	}
	assert.Equal(t, subscriberBufferSize, n)
	assert.Equal(t, uint64(subscriberBufferSize*2+1), s.Version())
}

func TestStore_ConcurrentDispatch(t *testing.T) {
	s := NewStore(NewState(nil), nil)
	s.Dispatch(NewConversation{Conversation: conv("a")})

	const workers, perWorker = 8, 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				s.Dispatch(AddMessage{ConversationID: "a", Message: userMsg("m", "x")})
			}
		}()
	}
	wg.Wait()

	c, _ := s.State().Conversation("a")
	assert.Len(t, c.Messages, workers*perWorker)
	assert.Equal(t, uint64(workers*perWorker+1), s.Version())
}

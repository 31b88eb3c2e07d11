// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/chatshell/internal/model"
	"github.com/jeranaias/chatshell/internal/provider"
)

// CompletionObserver is told about every finished completion.
type CompletionObserver interface {
	ObserveCompletion(model string, duration time.Duration, err error)
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller runs the message lifecycle on top of a Store: it creates
// conversations, appends the user message and a loading placeholder, asks
// the provider for a reply and patches the placeholder when the reply
// arrives.
type Controller struct {
	store    *Store
	provider provider.ResponseProvider

	ids      model.IDGenerator
	now      func() time.Time
	logger   *zap.Logger
	timeout  time.Duration
	observer CompletionObserver

	// sendMu serialises the synchronous part of SendMessage so concurrent
	// sends on an empty store share one new conversation
	sendMu sync.Mutex
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Controller.
type Option func(*Controller)

// WithIDGenerator sets the id source for conversations and messages.
func WithIDGenerator(g model.IDGenerator) Option {
	return func(c *Controller) { c.ids = g }
}

// WithClock sets the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithRequestTimeout bounds each completion. Zero means no timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// WithObserver reports finished completions to o.
func WithObserver(o CompletionObserver) Option {
	return func(c *Controller) { c.observer = o }
}

// NewController creates a controller over store that asks p for replies.
func NewController(store *Store, p provider.ResponseProvider, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		provider: p,
		ids:      model.UUIDGenerator{},
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("component", "controller"))
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c
}

// Store returns the store the controller mutates.
func (c *Controller) Store() *Store {
	return c.store
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

// StartNewConversation creates an empty conversation bound to the current
// model and makes it current.
func (c *Controller) StartNewConversation() model.Conversation {
	conv := model.NewConversation(c.ids.NewID(), c.store.State().CurrentModel, c.now())
	c.store.Dispatch(NewConversation{Conversation: conv})

	c.logger.Info("conversation started",
		zap.String("conversation_id", conv.ID),
		zap.String("model", conv.Model))
	return conv
}

// SelectConversation makes id current.
func (c *Controller) SelectConversation(id string) error {
	var found bool
	c.store.Update(func(s State) []Action {
		if _, found = s.Conversation(id); !found {
			return nil
		}
		return []Action{SetCurrentConversation{ID: id}}
	})
	if !found {
		return ErrConversationNotFound
	}
	return nil
}

// SelectModel makes id the model for new messages. Existing conversations
// keep their model.
func (c *Controller) SelectModel(id string) error {
	var ok bool
	c.store.Update(func(s State) []Action {
		if ok = s.IsModelAvailable(id); !ok {
			return nil
		}
		return []Action{SetCurrentModel{Model: id}}
	})
	if !ok {
		return ErrUnknownModel
	}
	c.logger.Info("model selected", zap.String("model", id))
	return nil
}

// RenameConversation replaces a conversation's title.
func (c *Controller) RenameConversation(id, title string) error {
	return c.mustExist(id, UpdateConversationTitle{ID: id, Title: title})
}

// TogglePin pins or unpins a conversation.
func (c *Controller) TogglePin(id string) error {
	return c.mustExist(id, PinConversation{ID: id})
}

// DeleteConversation removes a conversation. Replies still in flight for
// it are dropped when they arrive.
func (c *Controller) DeleteConversation(id string) error {
	if err := c.mustExist(id, DeleteConversation{ID: id}); err != nil {
		return err
	}
	c.logger.Info("conversation deleted", zap.String("conversation_id", id))
	return nil
}

func (c *Controller) mustExist(id string, action Action) error {
	var found bool
	c.store.Update(func(s State) []Action {
		if _, found = s.Conversation(id); !found {
			return nil
		}
		return []Action{action}
	})
	if !found {
		return ErrConversationNotFound
	}
	return nil
}

// =============================================================================
// MESSAGE LIFECYCLE
// =============================================================================

// SendMessage appends content as a user message to the current
// conversation (starting one if none is current), appends a loading
// assistant placeholder, and asks the provider for a reply in the
// background. Both messages are in the store when SendMessage returns.
//
// When the reply arrives the placeholder takes its text. If the
// conversation still has the default title, it is retitled from content.
// A failed reply turns the placeholder into a visible error message.
func (c *Controller) SendMessage(content string) *Pending {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		p := newPending("", "", "")
		p.finish(nil, ErrControllerClosed)
		return p
	}

	state := c.store.State()
	convID := state.CurrentConversationID
	if convID == "" {
		convID = c.StartNewConversation().ID
		state = c.store.State()
	}
	modelName := state.CurrentModel

	user := model.NewUserMessage(c.ids.NewID(), content, c.now())
	placeholder := model.NewPlaceholder(c.ids.NewID(), modelName, c.now())

	after := c.store.Dispatch(
		AddMessage{ConversationID: convID, Message: user},
		AddMessage{ConversationID: convID, Message: placeholder},
	)

	req := provider.Request{ConversationID: convID, Model: modelName}
	if conv, ok := after.Conversation(convID); ok {
		req.History = conv.History()
	}

	p := newPending(convID, user.ID, placeholder.ID)

	c.logger.Debug("message sent",
		zap.String("conversation_id", convID),
		zap.String("placeholder_id", placeholder.ID),
		zap.String("model", modelName),
		zap.Int("history", len(req.History)))

	c.wg.Add(1)
	go c.complete(p, req, content)

	return p
}

// complete asks the provider for a reply and settles the placeholder.
func (c *Controller) complete(p *Pending, req provider.Request, content string) {
	defer c.wg.Done()

	ctx := c.ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.provider.Generate(ctx, req)
	elapsed := time.Since(start)

	if err == nil && resp == nil {
		err = &provider.Error{Kind: provider.KindUnknown, Provider: c.provider.Name(), Message: "no reply"}
	}

	if err != nil {
		pe := provider.Classify(err)
		c.settle(p, model.Failed("Error: "+pe.UserMessage()), "", false)

		c.logger.Warn("reply failed",
			zap.String("conversation_id", p.ConversationID),
			zap.String("model", req.Model),
			zap.String("kind", pe.Kind.String()),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))

		c.observe(req.Model, elapsed, pe)
		p.finish(nil, pe)
		return
	}

	c.settle(p, model.Resolved(resp.Text), DeriveTitle(content), true)

	c.logger.Debug("reply received",
		zap.String("conversation_id", p.ConversationID),
		zap.String("model", req.Model),
		zap.Duration("elapsed", elapsed))

	c.observe(req.Model, elapsed, nil)
	p.finish(resp, nil)
}

// settle patches the placeholder and, when retitle is set and the
// conversation still has the default title, retitles it to title, which
// may be empty. A conversation deleted in the meantime is left alone.
func (c *Controller) settle(p *Pending, patch model.MessagePatch, title string, retitle bool) {
	c.store.Update(func(s State) []Action {
		conv, ok := s.Conversation(p.ConversationID)
		if !ok {
			c.logger.Debug("reply dropped, conversation gone",
				zap.String("conversation_id", p.ConversationID))
			return nil
		}
		actions := []Action{UpdateMessage{
			ConversationID: p.ConversationID,
			MessageID:      p.PlaceholderID,
			Patch:          patch,
		}}
		if retitle && conv.HasDefaultTitle() {
			actions = append(actions, UpdateConversationTitle{ID: p.ConversationID, Title: title})
		}
		return actions
	})
}

func (c *Controller) observe(modelName string, d time.Duration, err error) {
	if c.observer != nil {
		c.observer.ObserveCompletion(modelName, d, err)
	}
}

// Close cancels replies still in flight and waits for them to settle.
// Sends after Close fail with ErrControllerClosed.
func (c *Controller) Close() {
	c.sendMu.Lock()
	c.closed = true
	c.sendMu.Unlock()

	c.cancel()
	c.wg.Wait()
}

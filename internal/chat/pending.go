// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/jeranaias/chatshell/internal/provider"
)

// Pending tracks one in-flight reply started by SendMessage.
type Pending struct {
	ConversationID string
	UserMessageID  string
	PlaceholderID  string

	done chan struct{}
	resp *provider.Response
	err  error
}

func newPending(convID, userID, placeholderID string) *Pending {
	return &Pending{
		ConversationID: convID,
		UserMessageID:  userID,
		PlaceholderID:  placeholderID,
		done:           make(chan struct{}),
	}
}

// Done is closed once the placeholder has been resolved or marked failed.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the reply settles or ctx ends. It returns the provider
// error, which has also been rendered into the placeholder.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Result returns the response and error once Done is closed. Before that
// it returns nil, nil.
func (p *Pending) Result() (*provider.Response, error) {
	select {
	case <-p.done:
		return p.resp, p.err
	default:
		return nil, nil
	}
}

// Err returns the provider error once Done is closed, nil before that.
func (p *Pending) Err() error {
	_, err := p.Result()
	return err
}

func (p *Pending) finish(resp *provider.Response, err error) {
	p.resp = resp
	p.err = err
	close(p.done)
}

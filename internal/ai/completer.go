package ai

import "context"

// Request is one chat completion request. System sets the role framing,
// Prompt carries the task and the section material.
type Request struct {
	System string
	Prompt string
}

// Completer produces a raw completion for a request. Implementations wrap
// one provider each; the service layers fallback on top.
type Completer interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

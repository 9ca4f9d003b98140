package easel

import (
	"context"
	"time"
)

// RetryPolicy bounds how often a failing backend call is repeated.
type RetryPolicy struct {
	Attempts int           // total tries; values below 1 mean one try
	Interval time.Duration // pause between tries

	// OnFailure, if set, is called once all tries have failed.
	OnFailure func(alias, op string, err error)
}

// WithRetry wraps rn so each call is retried per p. Every failed try is
// logged at warn level. If rn implements Disposer, so does the wrapper.
func WithRetry(alias string, rn RenderNode, p RetryPolicy) RenderNode {
	r := &retryNode{alias: alias, inner: rn, policy: p}
	if d, ok := rn.(Disposer); ok {
		return &disposingRetryNode{retryNode: r, d: d}
	}
	return r
}

type retryNode struct {
	alias  string
	inner  RenderNode
	policy RetryPolicy
}

type disposingRetryNode struct {
	*retryNode
	d Disposer
}

func (n *disposingRetryNode) Dispose() { n.d.Dispose() }

// Unwrap returns the wrapped render node.
func (n *retryNode) Unwrap() RenderNode { return n.inner }

func (n *retryNode) Initialize(ctx context.Context, r *Renderer) error {
	return n.call(ctx, "initialize", func() error { return n.inner.Initialize(ctx, r) })
}

func (n *retryNode) UpdateTransform(ctx context.Context, r *Renderer) error {
	return n.call(ctx, "updateTransform", func() error { return n.inner.UpdateTransform(ctx, r) })
}

func (n *retryNode) UpdateContent(ctx context.Context, r *Renderer) error {
	return n.call(ctx, "updateContent", func() error { return n.inner.UpdateContent(ctx, r) })
}

func (n *retryNode) ReRender(ctx context.Context, r *Renderer) error {
	return n.call(ctx, "reRender", func() error { return n.inner.ReRender(ctx, r) })
}

func (n *retryNode) call(ctx context.Context, op string, fn func() error) error {
	attempts := max(n.policy.Attempts, 1)
	var err error
	for i := 1; i <= attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		Logger().Warn("render call failed", "alias", n.alias, "op", op, "attempt", i, "of", attempts, "err", err)
		if i == attempts {
			break
		}
		select {
		case <-time.After(n.policy.Interval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if n.policy.OnFailure != nil {
		n.policy.OnFailure(n.alias, op, err)
	}
	return err
}

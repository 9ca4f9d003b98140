package easel

import "context"

// RenderNode is the backend's handle for one single node. Each method is
// invoked only for the dirty level recorded when the batch was flushed.
type RenderNode interface {
	// Initialize prepares backend resources. Called once before any update,
	// and again after a failed attempt.
	Initialize(ctx context.Context, r *Renderer) error
	// UpdateTransform settles TransformDirty.
	UpdateTransform(ctx context.Context, r *Renderer) error
	// UpdateContent settles ContentDirty.
	UpdateContent(ctx context.Context, r *Renderer) error
	// ReRender settles AllDirty.
	ReRender(ctx context.Context, r *Renderer) error
}

// Disposer is implemented by render nodes holding resources that must be
// released when their node leaves the graph.
type Disposer interface {
	Dispose()
}

// Backend creates render nodes, one factory per node kind.
type Backend interface {
	NewRectangle(n *Rectangle) RenderNode
	NewText(n *Text) RenderNode
	NewImage(n *Image) RenderNode
}

// newRenderNode dispatches on the concrete node kind.
func newRenderNode(b Backend, n SingleNode) (RenderNode, error) {
	switch n := n.(type) {
	case *Rectangle:
		return b.NewRectangle(n), nil
	case *Text:
		return b.NewText(n), nil
	case *Image:
		return b.NewImage(n), nil
	default:
		return nil, newError(CodeUnknownNodeType, n.Alias(), "no render node for %s", n.Kind())
	}
}

// NopBackend renders nothing. Useful for headless replay and tests.
type NopBackend struct{}

func (NopBackend) NewRectangle(*Rectangle) RenderNode { return nopRenderNode{} }
func (NopBackend) NewText(*Text) RenderNode           { return nopRenderNode{} }
func (NopBackend) NewImage(*Image) RenderNode         { return nopRenderNode{} }

type nopRenderNode struct{}

func (nopRenderNode) Initialize(context.Context, *Renderer) error      { return nil }
func (nopRenderNode) UpdateTransform(context.Context, *Renderer) error { return nil }
func (nopRenderNode) UpdateContent(context.Context, *Renderer) error   { return nil }
func (nopRenderNode) ReRender(context.Context, *Renderer) error        { return nil }

// Package easel is a 2D scene engine for interactive design surfaces such as
// whiteboards and editors.
//
// It provides an alias-addressed scene graph, an affine geometry kernel, a
// dirty-tracking render scheduler and an undoable operation log. Drawing is
// delegated to a [Backend]; the [ebitenrender] subpackage draws with
// [Ebitengine].
//
// # Quick start
//
// A [World] bundles everything:
//
//	backend, _ := ebitenrender.NewBackend()
//	rect := easel.NewRectangle("card", 10, 10, 160, 100)
//	world, err := easel.NewWorld(backend, easel.DefaultConfig(), rect)
//	if err != nil {
//		log.Fatal(err)
//	}
//	world.UseDefaultHandlers()
//	ebitenrender.Run(world, backend, ebitenrender.RunConfig{Title: "Board"})
//
// # Scene graph
//
// Every node has a caller-chosen alias unique across the [Graph]. Single
// nodes ([Rectangle], [Text], [Image]) own a transform that maps the unit
// square onto their box. A [Group] has no box of its own; its [Group.BBox]
// is computed from its children and moving it moves them.
//
// Structural edits go through [Graph.Add], [Graph.Update] and
// [Graph.Delete]. A failed edit leaves the graph untouched. Property edits
// while a renderer is running go through [Graph.Mutate].
//
// # Geometry
//
// [Matrix2D] is a 2x3 affine matrix. [BBox] is a transformed unit square
// with nine pivots, supporting resize from a pivot, aspect-ratio locking and
// snapped rotation.
//
// # Rendering
//
// Each node carries pending [RenderInfo]: a [DirtyLevel] and a
// [TargetQueue]. Requests merge so a higher level subsumes a lower one.
// [Renderer.Refresh] flushes pending requests as one batch per queue. Each
// queue runs its batches one at a time; a batch that has not started is
// replaced when a newer batch subsumes it. [Renderer.Wait] blocks until the
// immediate queue is empty.
//
// # Operation log
//
// A composite op ([COp]) such as [MoveTo] is translated into atomic ops
// ([AOp]) that carry both the previous and next field values.
// [Executer.Exec] applies and records them; [Executer.Undo] and
// [Executer.Redo] replay them.
//
// [Ebitengine]: https://ebitengine.org
// [ebitenrender]: https://pkg.go.dev/github.com/phanxgames/easel/ebitenrender
package easel

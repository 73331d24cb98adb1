package render

import "context"

// Inject binds a renderer to handlers. The returned wrapper takes a handler
// that wants the renderer as an argument and gives back one with the plain
// signature the caller's framework expects.
//
//	wrap := render.Inject[*ui.Interaction](r)
//	cb := wrap(func(ctx context.Context, r *render.Renderer, in *ui.Interaction) error { ... })
func Inject[T any](r *Renderer) func(func(context.Context, *Renderer, T) error) func(context.Context, T) error {
	return func(h func(context.Context, *Renderer, T) error) func(context.Context, T) error {
		return func(ctx context.Context, v T) error {
			return h(ctx, r, v)
		}
	}
}

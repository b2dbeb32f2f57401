// Package pipeline holds the stage contract and the values handed from
// capture to encode and from the container back into decode.
package pipeline

import "context"

// Stage turns In into Out. Implementations check ctx between frames and
// return ctx.Err() once it is done.
type Stage[In, Out any] interface {
	Execute(ctx context.Context, input In) (Out, error)
}

// StageFunc lets a plain function serve as a Stage.
type StageFunc[In, Out any] func(ctx context.Context, input In) (Out, error)

func (f StageFunc[In, Out]) Execute(ctx context.Context, input In) (Out, error) {
	return f(ctx, input)
}

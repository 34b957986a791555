package services

import (
	"context"

	"golang.org/x/sync/errgroup"
)

type fetched[T any] struct {
	val T
	err error
}

// fetchInOrder runs fetch for every id and hands each result to emit in input
// order, as soon as that slot and all slots before it are complete. At most
// limit slots are in flight or waiting for emit at any time, so no more than
// limit results are held in memory. A fetch error is passed to emit; only an
// error returned by emit stops the walk.
func fetchInOrder[T any](
	ctx context.Context,
	ids []string,
	limit int,
	fetch func(ctx context.Context, id string) (T, error),
	emit func(id string, val T, err error) error,
) error {
	if limit <= 0 {
		limit = 1
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	slots := make([]chan fetched[T], len(ids))
	for i := range slots {
		slots[i] = make(chan fetched[T], 1)
	}

	// a token is taken before a fetch starts and returned once emit has
	// consumed its result
	tokens := make(chan struct{}, limit)

	var g errgroup.Group
	g.SetLimit(limit)
	go func() {
		for i, id := range ids {
			select {
			case tokens <- struct{}{}:
			case <-ctx.Done():
				_ = g.Wait()
				return
			}
			g.Go(func() error {
				val, err := fetch(ctx, id)
				slots[i] <- fetched[T]{val: val, err: err}
				return nil
			})
		}
		_ = g.Wait()
	}()

	for i, id := range ids {
		var res fetched[T]
		select {
		case res = <-slots[i]:
		case <-ctx.Done():
			return ctx.Err()
		}
		err := emit(id, res.val, res.err)
		<-tokens
		if err != nil {
			return err
		}
	}
	return nil
}

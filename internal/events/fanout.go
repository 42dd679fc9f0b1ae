package events

import (
	"context"
	"sync"
)

// fanOut runs fn for indexes [0, tasks) over a bounded number of
// goroutines. Used when an event targets many recipients (followers of a
// business or category) so one noisy offer does not spawn a goroutine per
// follower.
func fanOut(ctx context.Context, workers, tasks int, fn func(ctx context.Context, i int)) {
	if tasks <= 0 {
		return
	}
	if workers > tasks {
		workers = tasks
	}
	if workers < 1 {
		workers = 1
	}

	idx := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				fn(ctx, i)
			}
		}()
	}

	for i := 0; i < tasks; i++ {
		select {
		case idx <- i:
		case <-ctx.Done():
			close(idx)
			wg.Wait()
			return
		}
	}
	close(idx)
	wg.Wait()
}

package channel_utils

import (
	"context"
	"sync"
)

// MergeChannels fans channels into one. Once ctx is done the remaining values
// are read and dropped so that no producer stays blocked on a send.
// Forwarders must not run on the worker pool: they block until pool tasks
// produce.
func MergeChannels[T any](ctx context.Context, channels ...<-chan T) <-chan T {
	var wg sync.WaitGroup
	merged := make(chan T)

	forward := func(c <-chan T) {
		defer wg.Done()
		for val := range c {
			select {
			case merged <- val:
			case <-ctx.Done():
			}
		}
	}

	wg.Add(len(channels))
	for _, c := range channels {
		go forward(c)
	}

	go func() {
		wg.Wait()
		close(merged)
	}()

	return merged
}

// Drain discards whatever is left on channels in the background.
func Drain[T any](channels ...<-chan T) {
	for _, c := range channels {
		go func(ch <-chan T) {
			for range ch {
			}
		}(c)
	}
}

package memory

// watchBuffer is the channel capacity of a single subscription. A
// subscriber that falls behind loses intermediate states, never the
// most recent one.
const watchBuffer = 8

// trySend delivers v without blocking: when the subscriber's buffer is
// full, the oldest buffered update is dropped in favor of the newest
// state. Callers must hold the repository write lock so sends never
// race with channel close.
func trySend[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

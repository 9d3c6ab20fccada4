package modelmill

// History accumulates the messages exchanged with a provider so they can be
// replayed on subsequent requests.
//
// T is the provider's native message representation: each provider keeps its
// history in the form its SDK expects, so nothing has to be re-adapted when it
// is replayed.
type History[T any] struct {
	history []T
}

// Save appends a message to the history.
func (h *History[T]) Save(message T) {
	h.history = append(h.history, message)
}

// Load returns the accumulated messages, oldest first.
func (h *History[T]) Load() []T {
	return h.history
}

// Clear drops everything, system instructions included.
func (h *History[T]) Clear() {
	h.history = []T{}
}

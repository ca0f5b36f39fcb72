package storage

import "sync"

// Topic identifies a table whose contents changed.
type Topic int

const (
	TopicExercises Topic = iota
	TopicSessions
	TopicWorkoutSets
)

// notifier fans out change signals to subscribers. Sends never block: a
// subscriber that has not consumed the previous signal simply keeps its one
// pending signal, which is enough to trigger a refresh.
type notifier struct {
	mu     sync.Mutex
	subs   map[Topic]map[int]chan struct{}
	nextID int
	closed bool
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[Topic]map[int]chan struct{})}
}

func (n *notifier) subscribe(t Topic) (<-chan struct{}, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan struct{}, 1)
	if n.closed {
		close(ch)
		return ch, func() {}
	}

	if n.subs[t] == nil {
		n.subs[t] = make(map[int]chan struct{})
	}
	id := n.nextID
	n.nextID++
	n.subs[t][id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if sub, ok := n.subs[t][id]; ok {
			delete(n.subs[t], id)
			close(sub)
		}
	}
	return ch, cancel
}

func (n *notifier) notify(t Topic) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	for _, ch := range n.subs[t] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (n *notifier) close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	for _, subs := range n.subs {
		for _, ch := range subs {
			close(ch)
		}
	}
	n.subs = nil
}

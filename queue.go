package cronjob

import (
	"sync"
	"time"
)

type fireKind int

const (
	fireDue fireKind = iota
	fireStop
	fireFailed
)

// fireEvent 后台协程发往前台分发协程的事件
type fireEvent struct {
	kind fireKind
	at   time.Time
	err  error
}

// fireQueue 无界、有序的单生产者单消费者队列
// 发送端永远不会阻塞，只有接收端在队列为空时等待
type fireQueue struct {
	mu     sync.Mutex
	items  []fireEvent
	closed bool
	notify chan struct{}
}

func newFireQueue() *fireQueue {
	return &fireQueue{notify: make(chan struct{}, 1)}
}

func (q *fireQueue) Push(ev fireEvent) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, ev)
	q.mu.Unlock()
	q.signal()
}

// Pop 阻塞直到有事件可读，队列关闭且为空时返回false
func (q *fireQueue) Pop() (fireEvent, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			ev := q.items[0]
			q.items[0] = fireEvent{}
			q.items = q.items[1:]
			q.mu.Unlock()
			return ev, true
		}
		if q.closed {
			q.mu.Unlock()
			return fireEvent{}, false
		}
		q.mu.Unlock()
		<-q.notify
	}
}

func (q *fireQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

func (q *fireQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *fireQueue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

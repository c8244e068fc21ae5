package cronjob

import (
	"sync"
	"time"
)

// Clock 时间来源，生产环境使用 RealClock，测试中注入 FakeClock
type Clock interface {
	// Now 当前时间
	Now() time.Time
	// After 等价于 time.After
	After(d time.Duration) <-chan time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

func (RealClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// FakeClock 可控时钟，时间只会在调用 Set/Advance 时前进
// stepping 模式下每次 After 都会立即把时间前进d并触发
type FakeClock struct {
	mu       sync.Mutex
	now      time.Time
	waiters  []fakeWaiter
	stepping bool
}

type fakeWaiter struct {
	deadline time.Time
	ch       chan time.Time
}

func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t}
}

// NewSteppingClock 每次等待都会让时间自动前进，适合驱动后台协程快速跑完模拟时间
func NewSteppingClock(t time.Time) *FakeClock {
	return &FakeClock{now: t, stepping: true}
}

func (f *FakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *FakeClock) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan time.Time, 1)
	if f.stepping && d > 0 {
		f.now = f.now.Add(d)
		f.fire()
	}
	if d <= 0 || f.stepping {
		ch <- f.now
		return ch
	}

	f.waiters = append(f.waiters, fakeWaiter{deadline: f.now.Add(d), ch: ch})
	return ch
}

// Set 设置当前时间，到期的等待者会被唤醒
func (f *FakeClock) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
	f.fire()
}

// Advance 时间前进d
func (f *FakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
	f.fire()
}

// Waiters 当前挂起的等待者数量
func (f *FakeClock) Waiters() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.waiters)
}

// fire 调用方必须持有锁
func (f *FakeClock) fire() {
	pending := f.waiters[:0]
	for _, w := range f.waiters {
		if w.deadline.After(f.now) {
			pending = append(pending, w)
			continue
		}
		w.ch <- f.now
	}
	f.waiters = pending
}

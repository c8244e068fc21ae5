package cronjob

import (
	"sort"
	"sync"

	"github.com/robfig/cron/v3"
)

// entry 注册到调度器中的任务
type entry struct {
	name string
	// schedule 只用于预览触发时间，调度由 tracker 完成
	schedule cron.Schedule
	tracker  *JobTracker
	cb       Callback
}

// registry 并发安全的任务注册表
type registry struct {
	mp map[string]*entry
	mu *sync.RWMutex
}

func newRegistry(size int) *registry {
	return &registry{
		mp: make(map[string]*entry, size),
		mu: &sync.RWMutex{},
	}
}

// Add 名称已存在时返回false
func (r *registry) Add(e *entry) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.mp[e.name]; ok {
		return false
	}
	r.mp[e.name] = e
	return true
}

func (r *registry) Get(name string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.mp[name]
	return e, ok
}

// All 按名称排序返回全部任务
func (r *registry) All() []*entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]*entry, 0, len(r.mp))
	for _, e := range r.mp {
		res = append(res, e)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].name < res[j].name
	})
	return res
}

func (r *registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.mp)
}

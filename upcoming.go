package cronjob

import (
	"container/heap"
	"time"

	"github.com/TimeWtr/cronjob/domain"
	"github.com/robfig/cron/v3"
)

// upcomingItem 小顶堆中的元素，At 最早的排在堆顶
type upcomingItem struct {
	name     string
	schedule cron.Schedule
	at       time.Time
}

type upcomingHeap []upcomingItem

func (h *upcomingHeap) Len() int {
	return len(*h)
}

// Less 比较
// 条件：
// 1. 触发时间较早者在前
// 2. 触发时间相同的情况下按任务名称排序
func (h *upcomingHeap) Less(i, j int) bool {
	a, b := (*h)[i], (*h)[j]
	return a.at.Before(b.at) ||
		a.at.Equal(b.at) && a.name < b.name
}

func (h *upcomingHeap) Swap(i, j int) {
	(*h)[i], (*h)[j] = (*h)[j], (*h)[i]
}

func (h *upcomingHeap) Push(x interface{}) {
	*h = append(*h, x.(upcomingItem))
}

func (h *upcomingHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// mergeUpcoming 合并多个任务在from之后的前n次触发
func mergeUpcoming(entries []*entry, from time.Time, loc *time.Location, n int) []domain.Upcoming {
	if n <= 0 || len(entries) == 0 {
		return nil
	}

	if loc != nil {
		from = from.In(loc)
	}
	h := make(upcomingHeap, 0, len(entries))
	for _, e := range entries {
		h = append(h, upcomingItem{name: e.name, schedule: e.schedule, at: e.schedule.Next(from)})
	}
	heap.Init(&h)

	res := make([]domain.Upcoming, 0, n)
	for len(res) < n {
		item := heap.Pop(&h).(upcomingItem)
		res = append(res, domain.Upcoming{JobName: item.name, At: item.at})
		item.at = item.schedule.Next(item.at)
		heap.Push(&h, item)
	}
	return res
}

package surface

import (
	"sort"
	"sync"
	"time"
)

// Ticker runs scheduled funcs on time.Ticker goroutines
type Ticker struct {
	mu     sync.Mutex
	active int
}

func NewTicker() *Ticker {
	return &Ticker{}
}

// Every calls fn every interval on its own goroutine until cancel is called
func (t *Ticker) Every(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	t.mu.Lock()
	t.active++
	t.mu.Unlock()

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
			t.mu.Lock()
			t.active--
			t.mu.Unlock()
		})
	}
}

// Active counts tasks that have not been cancelled
func (t *Ticker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Manual is a scheduler driven by explicit Advance calls, for tests and
// deterministic exports
type Manual struct {
	mu     sync.Mutex
	nextID int
	tasks  map[int]*manualTask
}

type manualTask struct {
	interval time.Duration
	elapsed  time.Duration
	fn       func()
}

func NewManual() *Manual {
	return &Manual{tasks: make(map[int]*manualTask)}
}

func (m *Manual) Every(interval time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.tasks[id] = &manualTask{interval: interval, fn: fn}
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.tasks, id)
	}
}

// Advance moves the clock forward by d, firing each task once per elapsed
// interval. Tasks run without the lock held so they may cancel themselves.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	var due []func()
	for _, id := range m.sortedIDs() {
		task := m.tasks[id]
		task.elapsed += d
		for task.interval > 0 && task.elapsed >= task.interval {
			task.elapsed -= task.interval
			due = append(due, task.fn)
		}
	}
	m.mu.Unlock()

	for _, fn := range due {
		fn()
	}
}

// Tick fires every task once
func (m *Manual) Tick() {
	m.mu.Lock()
	due := make([]func(), 0, len(m.tasks))
	for _, id := range m.sortedIDs() {
		due = append(due, m.tasks[id].fn)
	}
	m.mu.Unlock()

	for _, fn := range due {
		fn()
	}
}

func (m *Manual) sortedIDs() []int {
	ids := make([]int, 0, len(m.tasks))
	for id := range m.tasks {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Active counts scheduled tasks
func (m *Manual) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

package throughput

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	interval time.Duration = time.Second

	// number of closed windows we hold on to
	maxWindows = 60
)

// Throughput counts observations in one second windows until done is closed
type Throughput struct {
	mu sync.Mutex

	unit  string
	count int
	total int
	start time.Time
	stop  time.Time
	data  []int
}

type Snapshot struct {
	Unit  string    `json:"unit"`
	Total int       `json:"total"`
	Start time.Time `json:"start"`
	Stop  time.Time `json:"stop"`
	Data  []int     `json:"data"`
}

func New(unit string, done <-chan struct{}) *Throughput {
	now := time.Now().UTC()
	t := &Throughput{
		unit:  unit,
		start: now,
		stop:  now,
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				t.roll()
			}
		}
	}()

	return t
}

func (t *Throughput) Observe(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.count += n
}

func (t *Throughput) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now().UTC()
	t.count = 0
	t.total = 0
	t.start = now
	t.stop = now
	t.data = []int{}
}

// Snapshot includes the window that is still open in the total
func (t *Throughput) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	data := make([]int, len(t.data))
	copy(data, t.data)

	return Snapshot{
		Unit:  t.unit,
		Total: t.total + t.count,
		Start: t.start,
		Stop:  t.stop,
		Data:  data,
	}
}

func (t *Throughput) String() json.RawMessage {
	if bytes, err := json.Marshal(t.Snapshot()); err != nil {
		return json.RawMessage("{}")
	} else {
		return bytes
	}
}

func (t *Throughput) roll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stop = time.Now().UTC()
	t.total += t.count
	t.data = append(t.data, t.count)
	if len(t.data) > maxWindows {
		t.data = t.data[len(t.data)-maxWindows:]
	}

	// empty out our current window
	t.count = 0
}

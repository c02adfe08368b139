package websocket

import "sync"

// frameQueue is the outbound side of a connection. Push never blocks; the writer
// goroutine pops frames until the queue is closed and, if asked to drain, empty.
type frameQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	frames [][]byte
	closed bool
}

func newFrameQueue() *frameQueue {
	q := &frameQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push returns false once the queue has been closed
func (q *frameQueue) push(frame []byte) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.frames = append(q.frames, frame)
	q.cond.Signal()
	return true
}

// pop blocks until a frame is available. draining is true for frames handed out
// after close. ok is false once the queue is closed and empty.
func (q *frameQueue) pop() (frame []byte, draining bool, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.frames) == 0 && !q.closed {
		q.cond.Wait()
	}

	if len(q.frames) == 0 {
		return nil, true, false
	}

	frame = q.frames[0]
	q.frames[0] = nil
	q.frames = q.frames[1:]
	return frame, q.closed, true
}

// close stops further pushes. Frames already queued are kept for the writer
// when drain is true and thrown away otherwise.
func (q *frameQueue) close(drain bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	if !drain {
		q.frames = nil
	}
	q.cond.Broadcast()
}

func (q *frameQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.frames)
}

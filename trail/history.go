package trail

import "video-instrument/frame"

// MaxCapacity bounds the history length regardless of configuration
const MaxCapacity = 64

// History is a fixed-capacity ring of past frames. Buffers are allocated on
// first use and then recycled: pushing into a full history overwrites the
// oldest frame in place.
type History struct {
	frames []*frame.Buffer
	head   int // oldest
	n      int
}

// NewHistory creates an empty history holding up to capacity frames
func NewHistory(capacity int) *History {
	if capacity < 0 {
		capacity = 0
	}
	if capacity > MaxCapacity {
		capacity = MaxCapacity
	}
	return &History{frames: make([]*frame.Buffer, capacity)}
}

func (h *History) Capacity() int { return len(h.frames) }
func (h *History) Len() int      { return h.n }

// Push stores a copy of src as the newest frame, evicting the oldest when
// full
func (h *History) Push(src *frame.Buffer) {
	capacity := len(h.frames)
	if capacity == 0 {
		return
	}

	var idx int
	if h.n < capacity {
		idx = (h.head + h.n) % capacity
		h.n++
	} else {
		idx = h.head
		h.head = (h.head + 1) % capacity
	}

	dst := h.frames[idx]
	if dst == nil || !dst.SameSize(src) {
		dst = frame.New(src.Width(), src.Height())
		h.frames[idx] = dst
	}
	dst.CopyFrom(src)
}

// Frame returns the frame pushed age pushes ago; age 1 is the newest.
// Returns nil when age is out of range.
func (h *History) Frame(age int) *frame.Buffer {
	if age < 1 || age > h.n {
		return nil
	}
	return h.frames[(h.head+h.n-age)%len(h.frames)]
}

// Clear forgets every frame but keeps the buffers for reuse
func (h *History) Clear() {
	h.head, h.n = 0, 0
}

// Resize changes the capacity, keeping the newest frames
func (h *History) Resize(capacity int) {
	if capacity < 0 {
		capacity = 0
	}
	if capacity > MaxCapacity {
		capacity = MaxCapacity
	}
	if capacity == len(h.frames) {
		return
	}
	keep := min(h.n, capacity)
	frames := make([]*frame.Buffer, capacity)
	for i := 0; i < keep; i++ {
		// oldest kept first
		frames[i] = h.Frame(keep - i)
	}
	h.frames, h.head, h.n = frames, 0, keep
}

// Release drops every buffer
func (h *History) Release() {
	clear(h.frames)
	h.head, h.n = 0, 0
}

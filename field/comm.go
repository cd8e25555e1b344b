package field

import "sync"

// ReduceOp selects how AllReduce combines contributions.
type ReduceOp int

const (
	OpSum ReduceOp = iota
	OpMin
	OpMax
)

// Communicator is the cross-rank transport consumed by halo exchange and
// reductions. Send is buffered and does not block as long as each rank
// posts at most one message per (peer, tag) pair before the peer drains
// it; Recv blocks until the matching message arrives. AllReduce and
// Barrier are synchronizing collectives: no rank returns before all ranks
// have entered the call.
type Communicator interface {
	Rank() int
	Size() int

	// Send posts data to rank `to` under the given tag.
	Send(to, tag int, data []float64)
	// Recv blocks until a message from rank `from` with the given tag
	// arrives and returns its payload.
	Recv(from, tag int) []float64

	// AllReduce combines vals element-wise across all ranks and returns
	// the identical combined result on every rank.
	AllReduce(vals []float64, op ReduceOp) []float64

	Barrier()
}

// maxTag bounds the tag space: 8 halo directions.
const maxTag = 8

// SelfComm is the trivial single-rank communicator. Sends loop back to a
// local queue; collectives return their input.
type SelfComm struct {
	queue map[int][][]float64
}

// NewSelfComm creates a serial communicator.
func NewSelfComm() *SelfComm {
	return &SelfComm{queue: make(map[int][][]float64)}
}

func (c *SelfComm) Rank() int { return 0 }
func (c *SelfComm) Size() int { return 1 }

func (c *SelfComm) Send(to, tag int, data []float64) {
	c.queue[tag] = append(c.queue[tag], data)
}

func (c *SelfComm) Recv(from, tag int) []float64 {
	q := c.queue[tag]
	if len(q) == 0 {
		panic("field: Recv on empty self queue")
	}
	data := q[0]
	c.queue[tag] = q[1:]
	return data
}

func (c *SelfComm) AllReduce(vals []float64, op ReduceOp) []float64 {
	out := make([]float64, len(vals))
	copy(out, vals)
	return out
}

func (c *SelfComm) Barrier() {}

// Group is a shared-memory communicator for ranks running as goroutines
// within one process. Message channels are keyed by (from, to, tag) so
// that two ranks exchanging across more than one direction (small or
// periodic process grids) never collide.
type Group struct {
	size int
	mail [][][]chan []float64 // [from][to][tag]
	red  *reducer
}

// RankComm binds one rank's view of a Group.
type RankComm struct {
	g    *Group
	rank int
}

// NewGroup creates communicators for size ranks sharing one process.
func NewGroup(size int) []*RankComm {
	g := &Group{
		size: size,
		mail: make([][][]chan []float64, size),
		red:  newReducer(size),
	}
	for from := 0; from < size; from++ {
		g.mail[from] = make([][]chan []float64, size)
		for to := 0; to < size; to++ {
			g.mail[from][to] = make([]chan []float64, maxTag)
			for tag := 0; tag < maxTag; tag++ {
				g.mail[from][to][tag] = make(chan []float64, 1)
			}
		}
	}
	comms := make([]*RankComm, size)
	for rank := range comms {
		comms[rank] = &RankComm{g: g, rank: rank}
	}
	return comms
}

func (c *RankComm) Rank() int { return c.rank }
func (c *RankComm) Size() int { return c.g.size }

func (c *RankComm) Send(to, tag int, data []float64) {
	c.g.mail[c.rank][to][tag] <- data
}

func (c *RankComm) Recv(from, tag int) []float64 {
	return <-c.g.mail[from][c.rank][tag]
}

func (c *RankComm) AllReduce(vals []float64, op ReduceOp) []float64 {
	return c.g.red.allReduce(c.rank, vals, op)
}

func (c *RankComm) Barrier() {
	c.g.red.allReduce(c.rank, nil, OpSum)
}

// reducer implements a blocking all-reduce: the last rank to contribute
// combines and broadcasts, everyone else waits.
type reducer struct {
	mu    sync.Mutex
	size  int
	acc   []float64
	count int
	out   []chan []float64
}

func newReducer(size int) *reducer {
	r := &reducer{size: size, out: make([]chan []float64, size)}
	for i := range r.out {
		r.out[i] = make(chan []float64, 1)
	}
	return r
}

func (r *reducer) allReduce(rank int, vals []float64, op ReduceOp) []float64 {
	r.mu.Lock()
	if r.count == 0 {
		r.acc = append([]float64(nil), vals...)
	} else {
		for i := range vals {
			switch op {
			case OpSum:
				r.acc[i] += vals[i]
			case OpMin:
				if vals[i] < r.acc[i] {
					r.acc[i] = vals[i]
				}
			case OpMax:
				if vals[i] > r.acc[i] {
					r.acc[i] = vals[i]
				}
			}
		}
	}
	r.count++
	if r.count == r.size {
		for i := range r.out {
			result := make([]float64, len(r.acc))
			copy(result, r.acc)
			r.out[i] <- result
		}
		r.count = 0
		r.acc = nil
	}
	r.mu.Unlock()
	return <-r.out[rank]
}

package field

import (
	"fmt"

	"github.com/glacierflow/icesheet/grid"
)

// direction enumerates the eight halo-exchange neighbors. The tag of a
// direction doubles as the message tag; a receiver listens on the tag of
// the opposite direction, which is what the sender used.
type direction struct {
	di, dj int
}

var directions = [8]direction{
	{-1, 0}, {1, 0}, {0, -1}, {0, 1},
	{-1, -1}, {1, -1}, {-1, 1}, {1, 1},
}

func opposite(tag int) int {
	d := directions[tag]
	for t, o := range directions {
		if o.di == -d.di && o.dj == -d.dj {
			return t
		}
	}
	return -1
}

// link describes the exchange with one neighbor: precomputed cell-index
// mappings from local storage into the send payload and from the receive
// payload into halo storage. Mappings are in cell units; payloads expand
// by each field's dof at pack time.
type link struct {
	tag      int
	neighbor int
	self     bool // periodic wraparound onto this rank: a local copy
	sendIdx  []int
	recvIdx  []int
}

// Exchanger performs the two-phase ghost-cell boundary exchange for one
// rank against up to eight neighbor sub-domains. Index mappings are built
// once; Exchange then packs boundary strips into per-neighbor buffers,
// posts all sends, and blocks until every expected receive has been
// unpacked. Completion is a synchronization point: no halo read is valid
// before Exchange returns.
//
// For periodic axes decomposed onto a single rank the wraparound is
// handled as a local copy, not a message round-trip.
type Exchanger struct {
	dec   *grid.Decomposition
	comm  Communicator
	halo  int
	rank  int
	links []link
}

// NewExchanger builds the exchange mappings for comm's rank.
func NewExchanger(dec *grid.Decomposition, comm Communicator) *Exchanger {
	e := &Exchanger{
		dec:  dec,
		comm: comm,
		halo: dec.Halo,
		rank: comm.Rank(),
	}
	if e.halo == 0 {
		return e
	}
	xs, xm, ys, ym := dec.Owned(e.rank)
	stride := xm + 2*e.halo

	cellIndex := func(i, j int) int {
		return (j-ys+e.halo)*stride + (i - xs + e.halo)
	}
	region := func(d direction, recv bool) []int {
		i0, i1 := spanFor(d.di, recv, xs, xm, e.halo)
		j0, j1 := spanFor(d.dj, recv, ys, ym, e.halo)
		idx := make([]int, 0, (i1-i0)*(j1-j0))
		for j := j0; j < j1; j++ {
			for i := i0; i < i1; i++ {
				idx = append(idx, cellIndex(i, j))
			}
		}
		return idx
	}

	for tag, d := range directions {
		nbr := dec.Neighbor(e.rank, d.di, d.dj)
		if nbr < 0 {
			continue
		}
		l := link{
			tag:      tag,
			neighbor: nbr,
			self:     nbr == e.rank,
			sendIdx:  region(d, false),
			recvIdx:  region(d, true),
		}
		e.links = append(e.links, l)
	}
	return e
}

// spanFor returns the half-open owned-index range of the strip exchanged
// along one axis for a direction component: the interior boundary strip
// when sending, the halo strip when receiving.
func spanFor(d int, recv bool, start, count, halo int) (lo, hi int) {
	switch d {
	case -1:
		if recv {
			return start - halo, start
		}
		return start, start + halo
	case 1:
		if recv {
			return start + count, start + count + halo
		}
		return start + count - halo, start + count
	default:
		return start, start + count
	}
}

// Exchange refreshes the halo cells of the given fields from their owning
// neighbor ranks. Fields are exchanged in order; each field's exchange
// completes before the next begins. All ranks of the decomposition must
// call Exchange with shape-compatible field lists.
func (e *Exchanger) Exchange(fields ...*Field) error {
	for _, f := range fields {
		if f.halo != e.halo {
			return fmt.Errorf("%w: field %q has halo %d, exchanger expects %d",
				ErrShapeMismatch, f.name, f.halo, e.halo)
		}
		e.exchangeOne(f)
	}
	return nil
}

func (e *Exchanger) exchangeOne(f *Field) {
	// Self-wrap links resolve as local copies: the halo on side d mirrors
	// this rank's own interior strip on side -d.
	for _, l := range e.links {
		if !l.self {
			continue
		}
		src := e.linkByTag(opposite(l.tag))
		unpack(f, l.recvIdx, pack(f, src.sendIdx))
	}

	// Post all remote sends first; the transport buffers them, so no
	// rank blocks before every rank's sends are in flight.
	for _, l := range e.links {
		if l.self {
			continue
		}
		e.comm.Send(l.neighbor, l.tag, pack(f, l.sendIdx))
	}
	for _, l := range e.links {
		if l.self {
			continue
		}
		unpack(f, l.recvIdx, e.comm.Recv(l.neighbor, opposite(l.tag)))
	}
}

func (e *Exchanger) linkByTag(tag int) link {
	for _, l := range e.links {
		if l.tag == tag {
			return l
		}
	}
	return link{}
}

// pack gathers the cells named by idx into a contiguous payload.
func pack(f *Field, idx []int) []float64 {
	buf := make([]float64, len(idx)*f.dof)
	n := 0
	for _, cell := range idx {
		for c := 0; c < f.dof; c++ {
			buf[n] = f.data[cell*f.dof+c]
			n++
		}
	}
	return buf
}

// unpack scatters a received payload into the halo cells named by idx.
func unpack(f *Field, idx []int, buf []float64) {
	n := 0
	for _, cell := range idx {
		for c := 0; c < f.dof; c++ {
			f.data[cell*f.dof+c] = buf[n]
			n++
		}
	}
}

// Package hash implements spec.md's deep structural value hashing:
// a 128-bit digest over a value graph that may still contain
// unevaluated Promises, used for job-result memoization
// (internal/jobexec) and for the `hash` built-in primitive.
//
// Hashing is itself demand-driven: forcing a Record field or a
// Closure's captured frame goes back through the owning Evaluator's
// single work queue (spec.md §5 single-writer rule), so Hash must run
// to completion on the same goroutine that owns the Evaluator.
package hash

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/funvibe/wakecore/internal/evaluator"
	"github.com/funvibe/wakecore/internal/heap"
)

// Digest is the 128-bit hash spec.md's deep hashing produces.
type Digest [16]byte

func (d Digest) String() string { return fmt.Sprintf("%x", [16]byte(d)) }

// Per-variant shallow tag bytes, folded into the hash before any
// children (SPEC_FULL.md "Supplemented features": a fixed tag byte per
// Value variant keeps structurally different variants from ever
// colliding regardless of payload).
const (
	tagString    = 1
	tagInteger   = 2
	tagDouble    = 3
	tagRegExp    = 4
	tagClosure   = 5
	tagRecord    = 6
	tagException = 7
	tagBackEdge  = 0xFF
)

// seed fixes MurmurHash's usual seed parameter to a constant so the
// digest is reproducible across runs and processes (spec.md "deep
// structural hashing ... 128-bit, MurmurHash-based"). This
// implementation folds the seed through SHA-256 rather than an actual
// MurmurHash3 pass: no murmur3 package appeared anywhere in the
// retrieved example corpus, and the project's policy is to avoid
// fabricating a dependency that isn't grounded in it — see DESIGN.md.
var seed = []byte("wakecore-deep-hash-v1")

func sum(buf []byte) Digest {
	full := sha256.Sum256(append(append([]byte{}, seed...), buf...))
	var out Digest
	copy(out[:], full[:16])
	return out
}

// Hasher computes deep hashes against a single Evaluator's heap,
// memoizing by pointer identity so shared structure is hashed once
// and handling cycles (a recursive closure capturing a frame that
// reaches back to itself) via a DFS virtual-address scheme: a node
// still being visited contributes its assigned address instead of
// recursing again.
type Hasher struct {
	e        *evaluator.Evaluator
	visiting map[interface{}]uint64
	finished map[interface{}]Digest
	next     uint64
}

func New(e *evaluator.Evaluator) *Hasher {
	return &Hasher{e: e, visiting: make(map[interface{}]uint64), finished: make(map[interface{}]Digest)}
}

// Hash computes the deep digest of root, forcing whatever promises it
// transitively reaches (spec.md "may still contain unevaluated
// Promises... suspension/resumption via a Receiver").
func (h *Hasher) Hash(root heap.Value) Digest {
	var result Digest
	done := false
	h.hashValue(root, func(d Digest) { result = d; done = true })
	h.e.RunUntilDone(func() bool { return done })
	return result
}

// ShallowTag hashes only v's immediate discriminator — its variant
// tag, plus a Record's constructor index and sum name — without
// recursing into children or forcing any Promise. Exposed to programs
// as the `hash.shallow` primitive (internal/prim) for cheaply
// branching on "same variant" without paying for a full deep Hash,
// mirroring original_source/src/dst/bind.cpp's distinction between a
// full structural hash and a quick discriminator compare.
func ShallowTag(v heap.Value) Digest {
	switch vv := v.(type) {
	case *heap.String:
		return sum([]byte{tagString})
	case *heap.Integer:
		return sum([]byte{tagInteger})
	case *heap.Double:
		return sum([]byte{tagDouble})
	case *heap.RegExp:
		return sum([]byte{tagRegExp})
	case *heap.Record:
		buf := []byte{tagRecord, byte(vv.CtorIndex)}
		buf = append(buf, []byte(vv.SumName)...)
		return sum(buf)
	case *heap.Closure:
		return sum([]byte{tagClosure})
	case *heap.Exception:
		return sum([]byte{tagException})
	default:
		return sum([]byte{0xFE})
	}
}

func addrHash(addr uint64) Digest {
	var d Digest
	d[0] = tagBackEdge
	binary.LittleEndian.PutUint64(d[8:], addr)
	return d
}

func (h *Hasher) hashValue(v heap.Value, k func(Digest)) {
	if v == nil {
		k(sum([]byte{0}))
		return
	}
	key := interface{}(v)
	if d, ok := h.finished[key]; ok {
		k(d)
		return
	}
	if addr, ok := h.visiting[key]; ok {
		k(addrHash(addr))
		return
	}
	h.next++
	addr := h.next
	h.visiting[key] = addr
	h.hashVariant(v, func(d Digest) {
		delete(h.visiting, key)
		h.finished[key] = d
		k(d)
	})
}

func (h *Hasher) hashVariant(v heap.Value, k func(Digest)) {
	switch vv := v.(type) {
	case *heap.String:
		k(sum(append([]byte{tagString}, []byte(vv.Value)...)))

	case *heap.Integer:
		// Bytes() is the absolute value; the sign byte keeps n and -n apart.
		k(sum(append([]byte{tagInteger, byte(vv.Value.Sign() + 1)}, vv.Value.Bytes()...)))

	case *heap.Double:
		var bits [8]byte
		binary.LittleEndian.PutUint64(bits[:], math.Float64bits(vv.Value))
		k(sum(append([]byte{tagDouble}, bits[:]...)))

	case *heap.RegExp:
		k(sum(append([]byte{tagRegExp}, []byte(vv.Source)...)))

	case *heap.Record:
		tasks := make([]func(func(Digest)), len(vv.Fields))
		for i, p := range vv.Fields {
			p := p
			tasks[i] = func(k2 func(Digest)) {
				h.e.Force(p, func(fv heap.Value) { h.hashValue(fv, k2) })
			}
		}
		sequence(tasks, func(results []Digest) {
			buf := []byte{tagRecord, byte(vv.CtorIndex)}
			buf = append(buf, []byte(vv.SumName)...)
			for _, r := range results {
				buf = append(buf, r[:]...)
			}
			k(sum(buf))
		})

	case *heap.Closure:
		bodyID := fmt.Sprintf("%p", vv.Body)
		h.hashFrame(vv.Captured, func(frameHash Digest) {
			buf := []byte{tagClosure}
			buf = append(buf, []byte(bodyID)...)
			buf = append(buf, frameHash[:]...)
			k(sum(buf))
		})

	case *heap.Exception:
		buf := []byte{tagException}
		for _, c := range vv.Causes {
			buf = append(buf, []byte(c.Reason)...)
		}
		k(sum(buf))

	default:
		k(sum([]byte{0xFE}))
	}
}

// hashFrame hashes a binding frame's own promise slots plus its
// parent chain, so two closures compare equal only when both their
// code and their entire captured environment match.
func (h *Hasher) hashFrame(f *heap.Frame, k func(Digest)) {
	if f == nil {
		k(sum([]byte{0}))
		return
	}
	key := interface{}(f)
	if d, ok := h.finished[key]; ok {
		k(d)
		return
	}
	if addr, ok := h.visiting[key]; ok {
		k(addrHash(addr))
		return
	}
	h.next++
	addr := h.next
	h.visiting[key] = addr

	tasks := make([]func(func(Digest)), len(f.Promises))
	for i, p := range f.Promises {
		p := p
		tasks[i] = func(k2 func(Digest)) {
			h.e.Force(p, func(v heap.Value) { h.hashValue(v, k2) })
		}
	}
	sequence(tasks, func(results []Digest) {
		h.hashFrame(f.Parent, func(parentHash Digest) {
			buf := make([]byte, 0, len(results)*16+16)
			for _, r := range results {
				buf = append(buf, r[:]...)
			}
			buf = append(buf, parentHash[:]...)
			d := sum(buf)
			delete(h.visiting, key)
			h.finished[key] = d
			k(d)
		})
	})
}

// sequence runs tasks strictly in order — each may itself suspend
// across the evaluator's work queue — and calls done once every
// result is in, preserving deterministic left-to-right field order in
// the digest regardless of how many queue hops each field took.
func sequence(tasks []func(func(Digest)), done func([]Digest)) {
	results := make([]Digest, len(tasks))
	var step func(i int)
	step = func(i int) {
		if i == len(tasks) {
			done(results)
			return
		}
		tasks[i](func(d Digest) {
			results[i] = d
			step(i + 1)
		})
	}
	step(0)
}

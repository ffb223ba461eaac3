package prim

import (
	"context"
	"math/big"
	"regexp"

	"github.com/funvibe/wakecore/internal/evaluator"
	"github.com/funvibe/wakecore/internal/hash"
	"github.com/funvibe/wakecore/internal/heap"
	"github.com/funvibe/wakecore/internal/jobexec"
)

// Standard returns the registry of built-in primitives every wakecore
// program can reference: integer/double arithmetic, string ops, RE2
// regex (spec.md §9 Open Question / SPEC_FULL.md "Supplemented
// features": Go's regexp stands in for wake's POSIX-ish regex engine,
// both being linear-time automaton matchers), the deep-hash primitive
// wired to ev so it can force nested structure through the same
// single-writer evaluator that owns it (spec.md §5), and the `job`
// primitive, which hands off to exec and resumes via ev.Defer exactly
// as spec.md §4.4's asynchronous primitive protocol describes.
func Standard(ev *evaluator.Evaluator, exec jobexec.JobExecutor) *Registry {
	r := NewRegistry()

	r.Register(intBinOp("integer.add", func(a, b *big.Int) *big.Int { return new(big.Int).Add(a, b) }))
	r.Register(intBinOp("integer.sub", func(a, b *big.Int) *big.Int { return new(big.Int).Sub(a, b) }))
	r.Register(intBinOp("integer.mul", func(a, b *big.Int) *big.Int { return new(big.Int).Mul(a, b) }))
	r.Register(Entry{Name: "integer.div", NArgs: 2, Fn: integerDiv})
	r.Register(Entry{Name: "integer.eq", NArgs: 2, Fn: integerCompare(func(c int) bool { return c == 0 })})
	r.Register(Entry{Name: "integer.lt", NArgs: 2, Fn: integerCompare(func(c int) bool { return c < 0 })})

	r.Register(doubleBinOp("double.add", func(a, b float64) float64 { return a + b }))
	r.Register(doubleBinOp("double.sub", func(a, b float64) float64 { return a - b }))
	r.Register(doubleBinOp("double.mul", func(a, b float64) float64 { return a * b }))
	r.Register(doubleBinOp("double.div", func(a, b float64) float64 { return a / b }))

	r.Register(Entry{Name: "string.cat", NArgs: 2, Fn: stringCat})
	r.Register(Entry{Name: "string.eq", NArgs: 2, Fn: stringEq})
	r.Register(Entry{Name: "string.len", NArgs: 1, Fn: stringLen})

	r.Register(Entry{Name: "regexp.compile", NArgs: 1, Fn: regexCompile})
	r.Register(Entry{Name: "regexp.match", NArgs: 2, Fn: regexMatch})
	r.Register(Entry{Name: "regexp.tokenize", NArgs: 2, Fn: regexTokenize})
	r.Register(Entry{Name: "regexp.replace", NArgs: 3, Fn: regexReplace})

	r.Register(Entry{Name: "hash", NArgs: 1, Fn: func(data interface{}, args []heap.Value, recv heap.Receiver) {
		h := hash.New(ev)
		d := h.Hash(args[0])
		recv.Receive(&heap.String{Value: d.String()})
	}})

	// hash.shallow exposes hash.ShallowTag directly: a discriminator-only
	// digest that never forces a Record's fields or a Closure's frame,
	// useful for a program that wants to branch on "same variant" without
	// paying for a full deep hash.
	r.Register(Entry{Name: "hash.shallow", NArgs: 1, Fn: func(data interface{}, args []heap.Value, recv heap.Receiver) {
		d := hash.ShallowTag(args[0])
		recv.Receive(&heap.String{Value: d.String()})
	}})

	r.Register(Entry{Name: "job", NArgs: 3, Fn: jobPrim(ev, exec)})

	return r
}

// jobPrim decodes (command: String, env: List String, inputs: List
// String), submits the resulting JobSpec to exec, and resumes the
// caller's receiver — potentially much later, on whatever goroutine
// exec's channel delivers on — by handing the completion back to ev's
// single worker via Defer (spec.md §5's one sanctioned cross-goroutine
// handoff).
func jobPrim(ev *evaluator.Evaluator, exec jobexec.JobExecutor) func(interface{}, []heap.Value, heap.Receiver) {
	return func(data interface{}, args []heap.Value, recv heap.Receiver) {
		cmd, ok := asString(args[0])
		if !ok {
			recv.Receive(typeError("job: expected a String command"))
			return
		}
		decodeStringList(ev, args[1], func(env []string, ok bool) {
			if !ok {
				recv.Receive(typeError("job: expected a List of String for env"))
				return
			}
			decodeStringList(ev, args[2], func(inputs []string, ok bool) {
				if !ok {
					recv.Receive(typeError("job: expected a List of String for inputs"))
					return
				}
				spec := jobexec.JobSpec{Command: cmd, Env: env, Inputs: inputs}
				ch, err := exec.Submit(context.Background(), spec)
				if err != nil {
					recv.Receive(typeError("job: " + err.Error()))
					return
				}
				go func() {
					result := <-ch
					ev.Defer(func() { recv.Receive(jobResultValue(result)) })
				}()
			})
		})
	}
}

// decodeStringList walks a List Record (resolver.ListSum's encoding)
// forcing each element's promise through ev, since list elements built
// by the evaluator may still be unevaluated thunks even though the
// List spine itself was already forced as a primitive argument.
func decodeStringList(ev *evaluator.Evaluator, v heap.Value, k func([]string, bool)) {
	var items []string
	var step func(heap.Value)
	step = func(v heap.Value) {
		rec, ok := v.(*heap.Record)
		if !ok || rec.SumName != "List" {
			k(nil, false)
			return
		}
		if rec.CtorIndex == 0 {
			k(items, true)
			return
		}
		ev.Force(rec.Fields[0], func(hv heap.Value) {
			s, ok := hv.(*heap.String)
			if !ok {
				k(nil, false)
				return
			}
			items = append(items, s.Value)
			ev.Force(rec.Fields[1], step)
		})
	}
	step(v)
}

func jobResultValue(r jobexec.JobResult) heap.Value {
	return &heap.Record{
		SumName:   "JobResult",
		CtorName:  "JobResult",
		CtorIndex: 0,
		Fields: []*heap.Promise{
			heap.NewFulfilledPromise(heap.NewInteger(int64(r.ExitCode))),
			heap.NewFulfilledPromise(&heap.String{Value: r.Stdout}),
			heap.NewFulfilledPromise(&heap.String{Value: r.Stderr}),
			heap.NewFulfilledPromise(heap.NewStringList(r.Outputs)),
		},
	}
}

func asInteger(v heap.Value) (*big.Int, bool) {
	i, ok := v.(*heap.Integer)
	if !ok {
		return nil, false
	}
	return i.Value, true
}

func typeError(reason string) heap.Value {
	return heap.NewException(reason, nil)
}

func intBinOp(name string, f func(a, b *big.Int) *big.Int) Entry {
	return Entry{Name: name, NArgs: 2, Fn: func(data interface{}, args []heap.Value, recv heap.Receiver) {
		a, ok1 := asInteger(args[0])
		b, ok2 := asInteger(args[1])
		if !ok1 || !ok2 {
			recv.Receive(typeError(name + ": expected Integer arguments"))
			return
		}
		recv.Receive(&heap.Integer{Value: f(a, b)})
	}}
}

func integerDiv(data interface{}, args []heap.Value, recv heap.Receiver) {
	a, ok1 := asInteger(args[0])
	b, ok2 := asInteger(args[1])
	if !ok1 || !ok2 {
		recv.Receive(typeError("integer.div: expected Integer arguments"))
		return
	}
	if b.Sign() == 0 {
		recv.Receive(typeError("integer.div: division by zero"))
		return
	}
	recv.Receive(&heap.Integer{Value: new(big.Int).Quo(a, b)})
}

func integerCompare(pred func(cmp int) bool) func(data interface{}, args []heap.Value, recv heap.Receiver) {
	return func(data interface{}, args []heap.Value, recv heap.Receiver) {
		a, ok1 := asInteger(args[0])
		b, ok2 := asInteger(args[1])
		if !ok1 || !ok2 {
			recv.Receive(typeError("integer comparison: expected Integer arguments"))
			return
		}
		recv.Receive(boolRecord(pred(a.Cmp(b))))
	}
}

func asDouble(v heap.Value) (float64, bool) {
	d, ok := v.(*heap.Double)
	if !ok {
		return 0, false
	}
	return d.Value, true
}

func doubleBinOp(name string, f func(a, b float64) float64) Entry {
	return Entry{Name: name, NArgs: 2, Fn: func(data interface{}, args []heap.Value, recv heap.Receiver) {
		a, ok1 := asDouble(args[0])
		b, ok2 := asDouble(args[1])
		if !ok1 || !ok2 {
			recv.Receive(typeError(name + ": expected Double arguments"))
			return
		}
		recv.Receive(&heap.Double{Value: f(a, b)})
	}}
}

func asString(v heap.Value) (string, bool) {
	s, ok := v.(*heap.String)
	if !ok {
		return "", false
	}
	return s.Value, true
}

func stringCat(data interface{}, args []heap.Value, recv heap.Receiver) {
	a, ok1 := asString(args[0])
	b, ok2 := asString(args[1])
	if !ok1 || !ok2 {
		recv.Receive(typeError("string.cat: expected String arguments"))
		return
	}
	recv.Receive(&heap.String{Value: a + b})
}

func stringEq(data interface{}, args []heap.Value, recv heap.Receiver) {
	a, ok1 := asString(args[0])
	b, ok2 := asString(args[1])
	if !ok1 || !ok2 {
		recv.Receive(typeError("string.eq: expected String arguments"))
		return
	}
	recv.Receive(boolRecord(a == b))
}

func stringLen(data interface{}, args []heap.Value, recv heap.Receiver) {
	s, ok := asString(args[0])
	if !ok {
		recv.Receive(typeError("string.len: expected a String argument"))
		return
	}
	recv.Receive(heap.NewInteger(int64(len(s))))
}

func regexCompile(data interface{}, args []heap.Value, recv heap.Receiver) {
	src, ok := asString(args[0])
	if !ok {
		recv.Receive(typeError("regexp.compile: expected a String argument"))
		return
	}
	re, err := regexp.Compile(src)
	if err != nil {
		recv.Receive(typeError("regexp.compile: " + err.Error()))
		return
	}
	recv.Receive(&heap.RegExp{Source: src, Pattern: re})
}

func regexMatch(data interface{}, args []heap.Value, recv heap.Receiver) {
	re, ok1 := args[0].(*heap.RegExp)
	s, ok2 := asString(args[1])
	if !ok1 || !ok2 {
		recv.Receive(typeError("regexp.match: expected (RegExp, String) arguments"))
		return
	}
	recv.Receive(boolRecord(re.Pattern.MatchString(s)))
}

func regexTokenize(data interface{}, args []heap.Value, recv heap.Receiver) {
	re, ok1 := args[0].(*heap.RegExp)
	s, ok2 := asString(args[1])
	if !ok1 || !ok2 {
		recv.Receive(typeError("regexp.tokenize: expected (RegExp, String) arguments"))
		return
	}
	recv.Receive(stringList(re.Pattern.FindAllString(s, -1)))
}

func regexReplace(data interface{}, args []heap.Value, recv heap.Receiver) {
	re, ok1 := args[0].(*heap.RegExp)
	s, ok2 := asString(args[1])
	repl, ok3 := asString(args[2])
	if !ok1 || !ok2 || !ok3 {
		recv.Receive(typeError("regexp.replace: expected (RegExp, String, String) arguments"))
		return
	}
	recv.Receive(&heap.String{Value: re.Pattern.ReplaceAllString(s, repl)})
}

// boolRecord builds a bare Bool Record without going through the
// evaluator's constructor-application path, mirroring resolver's
// BoolSum encoding (False = index 0, True = index 1).
func boolRecord(b bool) heap.Value {
	idx := 0
	name := "False"
	if b {
		idx = 1
		name = "True"
	}
	return &heap.Record{SumName: "Bool", CtorName: name, CtorIndex: idx}
}

func stringList(items []string) heap.Value {
	return heap.NewStringList(items)
}

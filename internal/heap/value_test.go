package heap

import (
	"testing"

	"github.com/funvibe/wakecore/internal/diagnostics"
	"github.com/stretchr/testify/require"
)

func TestCoalesceTraceCollapsesAdjacentIdenticalFrames(t *testing.T) {
	loop := StackFrame{Name: "loop", Location: diagnostics.Location{File: "f", Line: 1}}
	other := StackFrame{Name: "caller", Location: diagnostics.Location{File: "f", Line: 2}}

	trace := []StackFrame{loop, loop, loop, other, loop}
	got := CoalesceTrace(trace)

	require.Equal(t, []StackFrame{loop, other, loop}, got)
}

func TestCaptureTraceWalksInvokerChainInnermostFirst(t *testing.T) {
	outer := &Frame{Site: CallSite{Name: "outer", Line: 1}}
	inner := &Frame{Invoker: outer, Site: CallSite{Name: "inner", Line: 2}}

	trace := CaptureTrace(inner)
	require.Len(t, trace, 2)
	require.Equal(t, "inner", trace[0].Name)
	require.Equal(t, "outer", trace[1].Name)
}

func TestExceptionRenderIncludesCoalescedTrace(t *testing.T) {
	site := CallSite{Name: "f", Line: 3}
	frame := &Frame{Site: site}
	ex := NewException("boom", CaptureTrace(frame))
	require.Contains(t, ex.Render(), "boom")
	require.Contains(t, ex.Render(), "f")
}

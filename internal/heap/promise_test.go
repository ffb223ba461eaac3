package heap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPromiseFulfillNotifiesWaitersInFIFOOrder(t *testing.T) {
	p := NewPromise()
	var order []int
	p.OnFulfill(ReceiverFunc(func(v Value) { order = append(order, 1) }))
	p.OnFulfill(ReceiverFunc(func(v Value) { order = append(order, 2) }))
	p.OnFulfill(ReceiverFunc(func(v Value) { order = append(order, 3) }))

	require.False(t, p.Fulfilled())
	p.Fulfill(&String{Value: "x"})
	require.Equal(t, []int{1, 2, 3}, order)
}

func TestPromiseOnFulfillAfterFulfillIsSynchronous(t *testing.T) {
	p := NewPromise()
	p.Fulfill(NewInteger(42))

	var got Value
	p.OnFulfill(ReceiverFunc(func(v Value) { got = v }))
	require.NotNil(t, got)
	i, ok := got.(*Integer)
	require.True(t, ok)
	require.Equal(t, "42", i.Value.String())
}

func TestPromiseFulfillTwicePanics(t *testing.T) {
	p := NewPromise()
	p.Fulfill(&String{Value: "once"})
	require.Panics(t, func() { p.Fulfill(&String{Value: "twice"}) })
}

func TestNewFulfilledPromiseIsImmediatelyObservable(t *testing.T) {
	p := NewFulfilledPromise(&String{Value: "ready"})
	require.True(t, p.Fulfilled())
	v, ok := p.Value()
	require.True(t, ok)
	require.Equal(t, &String{Value: "ready"}, v)
}

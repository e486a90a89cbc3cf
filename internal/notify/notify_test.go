package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPush_DecaysAfterTTL(t *testing.T) {
	m := NewManager(WithTTL(30 * time.Millisecond))
	m.Push(CategoryElimination, "Bob is out")

	n, ok := m.Get(CategoryElimination)
	require.True(t, ok)
	require.Equal(t, "Bob is out", n.Text)

	require.Eventually(t, func() bool {
		_, ok := m.Get(CategoryElimination)
		return !ok
	}, time.Second, 5*time.Millisecond, "banner should decay after the TTL")
}

func TestPush_ReplacesNotStacks(t *testing.T) {
	// long TTL on the first banner: its timer must be canceled, not left to
	// clear the replacement early
	m := NewManager(WithTTL(40 * time.Millisecond))
	m.Push(CategoryElimination, "first")
	time.Sleep(25 * time.Millisecond)
	m.Push(CategoryElimination, "second")

	// past the first banner's original deadline; the second must survive
	time.Sleep(25 * time.Millisecond)
	n, ok := m.Get(CategoryElimination)
	require.True(t, ok, "second banner cleared early by the first banner's timer")
	require.Equal(t, "second", n.Text)

	require.Eventually(t, func() bool {
		_, ok := m.Get(CategoryElimination)
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestPushError_DroppedInsideSuppressionWindow(t *testing.T) {
	now := time.Now()
	m := NewManager(WithClock(func() time.Time { return now }))

	m.SuppressErrors()
	now = now.Add(100 * time.Millisecond) // inside the 500 ms window
	m.PushError("number already taken")

	_, ok := m.Get(CategoryError)
	require.False(t, ok, "error inside the suppression window must be dropped, not deferred")

	now = now.Add(500 * time.Millisecond) // window over
	m.PushError("number already taken")
	n, ok := m.Get(CategoryError)
	require.True(t, ok)
	require.Equal(t, "number already taken", n.Text)
}

func TestPush_SuppressionOnlyCoversErrors(t *testing.T) {
	now := time.Now()
	m := NewManager(WithClock(func() time.Time { return now }))

	m.SuppressErrors()
	m.Push(CategoryDuplicate, "selections reset")

	_, ok := m.Get(CategoryDuplicate)
	require.True(t, ok, "duplicate-pick notifications are not subject to error suppression")
}

func TestReset_DropsEverything(t *testing.T) {
	m := NewManager()
	m.Push(CategoryWin, "you won")
	m.PushError("oops")

	m.Reset()
	require.Empty(t, m.Active())
}

func TestActive_StableOrder(t *testing.T) {
	m := NewManager()
	m.PushError("oops")
	m.Push(CategoryElimination, "Bob is out")

	active := m.Active()
	require.Len(t, active, 2)
	require.Equal(t, CategoryElimination, active[0].Category)
	require.Equal(t, CategoryError, active[1].Category)
}

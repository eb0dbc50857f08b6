package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlotNewestScheduleWins(t *testing.T) {
	fake := NewFake()
	slot := NewSlot(fake)

	var fired []string
	slot.Schedule(4*time.Second, func() { fired = append(fired, "first") })
	fake.Advance(2 * time.Second)
	slot.Schedule(4*time.Second, func() { fired = append(fired, "second") })

	fake.Advance(3 * time.Second)
	assert.Empty(t, fired)
	assert.True(t, slot.Pending())

	fake.Advance(time.Second)
	assert.Equal(t, []string{"second"}, fired)
	assert.False(t, slot.Pending())
}

func TestSlotCancel(t *testing.T) {
	fake := NewFake()
	slot := NewSlot(fake)

	called := false
	slot.Schedule(time.Second, func() { called = true })
	slot.Cancel()
	fake.Advance(5 * time.Second)

	assert.False(t, called)
	assert.Equal(t, 0, fake.Pending())
}

func TestDebouncerAppliesAfterQuietPeriod(t *testing.T) {
	fake := NewFake()
	d := NewDebouncer(fake, 300*time.Millisecond, "")

	d.Push("a")
	fake.Advance(200 * time.Millisecond)
	d.Push("at")
	fake.Advance(200 * time.Millisecond)
	d.Push("atl")
	fake.Advance(299 * time.Millisecond)
	assert.Equal(t, "", d.Current())

	fake.Advance(time.Millisecond)
	assert.Equal(t, "atl", d.Current())
}

func TestDebouncerFlushAndStop(t *testing.T) {
	fake := NewFake()
	d := NewDebouncer(fake, 300*time.Millisecond, "init")

	d.Push("now")
	d.Flush()
	assert.Equal(t, "now", d.Current())

	d.Push("dropped")
	d.Stop()
	fake.Advance(time.Second)
	assert.Equal(t, "now", d.Current())
}

func TestRealSchedulerFires(t *testing.T) {
	done := make(chan struct{})
	slot := NewSlot(Real())
	slot.Schedule(10*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
}

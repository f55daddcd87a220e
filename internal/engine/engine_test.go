package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoopStopHaltsRunFromAnotherGoroutine(t *testing.T) {
	l := NewLoop()
	l.Interval = time.Millisecond

	ticked := make(chan struct{}, 1)
	l.OnTick = func() {
		select {
		case ticked <- struct{}{}:
		default:
		}
	}

	done := make(chan struct{})
	go func() {
		l.Run()
		close(done)
	}()

	<-ticked
	l.Stop()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestLoopSaveCadence(t *testing.T) {
	l := NewLoop()
	saves := 0
	l.OnSave = func() { saves++ }
	l.OnTick = func() {}

	for i := 0; i < SaveEveryTicks*2; i++ {
		l.step()
	}
	assert.Equal(t, 2, saves)
}

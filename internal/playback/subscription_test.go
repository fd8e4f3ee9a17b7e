package playback

import (
	"testing"
	"time"
)

func TestSubscriptionDelivers(t *testing.T) {
	s := newSubscription()

	s.sendState(State{Index: 3})
	s.sendPosition(7 * time.Second)
	s.sendError(ErrorEvent{Operation: "seek"})

	select {
	case st := <-s.States:
		if st.Index != 3 {
			t.Errorf("Index = %d, want 3", st.Index)
		}
	default:
		t.Fatal("state not delivered")
	}
	select {
	case pos := <-s.Positions:
		if pos != 7*time.Second {
			t.Errorf("position = %v, want 7s", pos)
		}
	default:
		t.Fatal("position not delivered")
	}
	select {
	case ev := <-s.Errors:
		if ev.Operation != "seek" {
			t.Errorf("Operation = %q, want %q", ev.Operation, "seek")
		}
	default:
		t.Fatal("error not delivered")
	}
}

func TestSubscriptionSendNeverBlocks(t *testing.T) {
	s := newSubscription()

	done := make(chan struct{})
	go func() {
		for i := range eventBufferSize * 3 {
			s.sendState(State{Index: i})
			s.sendPosition(time.Duration(i))
			s.sendError(ErrorEvent{})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("send blocked on a full, undrained subscription")
	}
}

func TestSubscriptionSlowConsumerConverges(t *testing.T) {
	s := newSubscription()

	for i := range eventBufferSize * 2 {
		s.sendState(State{Index: i})
	}

	// The buffer holds the oldest eventBufferSize snapshots; the rest were
	// dropped. Drain and confirm the consumer still makes progress.
	var got int
	for {
		select {
		case <-s.States:
			got++
			continue
		default:
		}
		break
	}
	if got != eventBufferSize {
		t.Errorf("drained %d states, want %d", got, eventBufferSize)
	}
}

func TestSubscriptionClose(t *testing.T) {
	s := newSubscription()
	s.close()
	select {
	case <-s.Done:
	default:
		t.Error("Done should be closed")
	}
}

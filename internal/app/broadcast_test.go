package app

import (
	"fmt"
	"testing"

	"livepoll-service/internal/domain"
)

func collect(ch <-chan domain.Event) []domain.Event {
	var out []domain.Event
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestGatewayScopedDelivery(t *testing.T) {
	g := NewGateway()
	a, cancelA := g.Attach("a")
	b, cancelB := g.Attach("b")
	defer cancelB()

	g.ToConn("a", domain.Event{Type: domain.EventHeartbeatAck})
	g.ToOthers("a", domain.Event{Type: domain.EventNewMessage})
	g.ToAll(domain.Event{Type: domain.EventChatHistory})

	gotA := collect(a)
	if len(gotA) != 2 || gotA[0].Type != domain.EventHeartbeatAck || gotA[1].Type != domain.EventChatHistory {
		t.Fatalf("unexpected events for a: %+v", gotA)
	}
	gotB := collect(b)
	if len(gotB) != 2 || gotB[0].Type != domain.EventNewMessage || gotB[1].Type != domain.EventChatHistory {
		t.Fatalf("unexpected events for b: %+v", gotB)
	}

	// Cancel closes the stream; a second cancel and sends to the detached
	// connection are no-ops.
	cancelA()
	cancelA()
	g.ToConn("a", domain.Event{Type: domain.EventHeartbeatAck})
	if _, open := <-a; open {
		t.Fatalf("expected closed stream for a")
	}
}

func TestGatewayDropsOldestWhenConsumerStalls(t *testing.T) {
	g := NewGateway()
	ch, cancel := g.Attach("slow")
	defer cancel()

	overflow := 5
	for i := 0; i < sendBuffer+overflow; i++ {
		g.ToConn("slow", domain.Event{
			Type:    domain.EventPollDeleted,
			Payload: domain.PollDeletedPayload{ID: fmt.Sprintf("%d", i)},
		})
	}

	// The oldest events are gone; the stalled consumer resumes at the
	// earliest surviving event and still receives the newest one.
	got := collect(ch)
	if len(got) != sendBuffer {
		t.Fatalf("expected full buffer, got %d events", len(got))
	}
	if id := got[0].Payload.(domain.PollDeletedPayload).ID; id != fmt.Sprintf("%d", overflow) {
		t.Fatalf("expected oldest events dropped, first is %s", id)
	}
	if id := got[len(got)-1].Payload.(domain.PollDeletedPayload).ID; id != fmt.Sprintf("%d", sendBuffer+overflow-1) {
		t.Fatalf("expected newest event retained, last is %s", id)
	}
}

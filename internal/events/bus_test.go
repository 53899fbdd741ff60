package events

import (
	"testing"
	"time"
)

func TestBus_TopicDelivery(t *testing.T) {
	b := NewBus()
	defer b.Close()

	taskCh := b.Subscribe(TopicTask, 4)
	agentCh := b.Subscribe(TopicAgent, 4)

	b.Publish(TopicTask, TaskCompletedEvent{ID: "task_1", Department: "engineering"})

	select {
	case ev := <-taskCh:
		done, ok := ev.(TaskCompletedEvent)
		if !ok {
			t.Fatalf("expected TaskCompletedEvent, got %T", ev)
		}
		if done.ID != "task_1" {
			t.Errorf("expected task_1, got %q", done.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for task event")
	}

	select {
	case ev := <-agentCh:
		t.Fatalf("agent subscriber received foreign event %T", ev)
	default:
	}
}

func TestBus_SubscribeAllSeesEveryTopic(t *testing.T) {
	b := NewBus()
	defer b.Close()

	all := b.SubscribeAll(4)

	b.Publish(TopicTask, TaskFailedEvent{ID: "task_1"})
	b.Publish(TopicWorkflow, WorkflowFinishedEvent{Completed: 2})

	got := []string{}
	for i := 0; i < 2; i++ {
		select {
		case ev := <-all:
			got = append(got, ev.EventType())
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for events")
		}
	}
	if got[0] != EventTypeTaskFailed || got[1] != EventTypeWorkflowFinished {
		t.Errorf("expected both topics delivered in order, got %v", got)
	}
}

func TestBus_FullSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := NewBus()
	defer b.Close()

	ch := b.Subscribe(TopicTask, 1)

	done := make(chan struct{})
	go func() {
		b.Publish(TopicTask, TaskCompletedEvent{ID: "a"})
		b.Publish(TopicTask, TaskCompletedEvent{ID: "b"}) // dropped
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on full subscriber")
	}

	ev := <-ch
	if ev.(TaskCompletedEvent).ID != "a" {
		t.Errorf("expected first event kept, got %v", ev)
	}
	select {
	case ev := <-ch:
		t.Fatalf("expected overflow event dropped, got %v", ev)
	default:
	}
}

func TestBus_CloseIsIdempotentAndClosesChannels(t *testing.T) {
	b := NewBus()
	ch := b.Subscribe(TopicTask, 1)

	b.Close()
	b.Close()

	if _, open := <-ch; open {
		t.Error("expected subscriber channel closed")
	}

	// Publishing and subscribing after close are safe no-ops.
	b.Publish(TopicTask, TaskCompletedEvent{ID: "late"})
	late := b.Subscribe(TopicTask, 1)
	if _, open := <-late; open {
		t.Error("expected post-close subscription to be closed immediately")
	}
}

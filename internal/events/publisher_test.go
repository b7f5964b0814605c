package events

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
)

func TestWatermillPublisher_Publish(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewSlogLogger(logger))
	defer pubSub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, "form-events")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	publisher := NewWatermillPublisher(pubSub, "form-events", logger)
	event := NewEvent(FormPublished, FormEventData{FormID: 4, OwnerID: "owner-1", Title: "Survey", ShareToken: "tok"})

	if err := publisher.Publish(ctx, event); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case msg := <-messages:
		msg.Ack()
		if msg.UUID != event.ID {
			t.Errorf("message uuid = %s, want %s", msg.UUID, event.ID)
		}
		if got := msg.Metadata.Get("event_type"); got != string(FormPublished) {
			t.Errorf("event_type metadata = %q", got)
		}

		var decoded struct {
			Type   EventType     `json:"type"`
			Source string        `json:"source"`
			Data   FormEventData `json:"data"`
		}
		if err := json.Unmarshal(msg.Payload, &decoded); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		if decoded.Type != FormPublished || decoded.Source != EventSource || decoded.Data.FormID != 4 {
			t.Errorf("decoded = %+v", decoded)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}

func TestNewKafkaPublisher_FallsBackWithoutBrokers(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	publisher, err := NewKafkaPublisher(nil, "form-events", logger)
	if err != nil {
		t.Fatalf("NewKafkaPublisher: %v", err)
	}
	defer publisher.Close()

	if err := publisher.Publish(context.Background(), NewEvent(FormDeleted, FormEventData{FormID: 1})); err != nil {
		t.Errorf("Publish without subscribers: %v", err)
	}
}

func TestMockEventPublisher(t *testing.T) {
	mock := NewMockEventPublisher(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	_ = mock.Publish(context.Background(), NewEvent(SubmissionCreated, SubmissionEventData{FormID: 1}))
	if got := mock.GetPublishedEvents(); len(got) != 1 || got[0].Type != SubmissionCreated {
		t.Fatalf("events = %+v", got)
	}

	mock.ClearEvents()
	if got := mock.GetPublishedEvents(); len(got) != 0 {
		t.Errorf("events after clear = %d", len(got))
	}
}

package events

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

type recordingJS struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (r *recordingJS) PublishAsync(subj string, data []byte, _ ...nats.PubOpt) (nats.PubAckFuture, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.subjects = append(r.subjects, subj)
	r.payloads = append(r.payloads, data)
	return nil, nil
}

func TestPublisher_NilIsNoop(t *testing.T) {
	var p *Publisher
	if p.Enabled() {
		t.Fatal("expected nil publisher to be disabled")
	}
	p.Publish(SubjectMediaCreated, "m1", "", nil)

	New(nil, nil).Publish(SubjectMediaCreated, "m1", "", nil)
}

func TestPublisher_Envelope(t *testing.T) {
	js := &recordingJS{}
	p := New(js, zap.NewNop())
	p.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	p.Publish(SubjectMediaUpdated, "m1", "catalog-ui", map[string]any{"title": "Heat"})

	if len(js.subjects) != 1 || js.subjects[0] != SubjectMediaUpdated {
		t.Fatalf("unexpected subjects: %v", js.subjects)
	}
	var ev Event
	if err := json.Unmarshal(js.payloads[0], &ev); err != nil {
		t.Fatal(err)
	}
	if ev.EventID == "" {
		t.Fatal("expected event id")
	}
	if ev.MediaID != "m1" || ev.UserID != "catalog-ui" || ev.EventName != SubjectMediaUpdated {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if !ev.OccurredAt.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected timestamp: %s", ev.OccurredAt)
	}
}

func TestPublisher_FailureIsSwallowed(t *testing.T) {
	js := &recordingJS{err: errors.New("nats: no responders")}
	New(js, zap.NewNop()).Publish(SubjectMediaDeleted, "m1", "", nil)
}

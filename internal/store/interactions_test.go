package store

import (
	"testing"
)

func TestLogInteraction(t *testing.T) {
	db := testDB(t)

	ix := &Interaction{
		SessionID:  "sess-001",
		ChildID:    "child-1",
		ItemID:     "item-9",
		Kind:       "video",
		Topic:      "gravity",
		Success:    true,
		DurationMS: 4000,
	}
	if err := db.LogInteraction(ix); err != nil {
		t.Fatalf("LogInteraction: %v", err)
	}
	if ix.ID == 0 || ix.CreatedAt == 0 {
		t.Error("ID and CreatedAt should be filled in")
	}

	recent, err := db.RecentInteractions("child-1", 10)
	if err != nil {
		t.Fatalf("RecentInteractions: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("got %d interactions, want 1", len(recent))
	}
	got := recent[0]
	if got.Topic != "gravity" || !got.Success || got.DurationMS != 4000 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestTopicSuccessRates(t *testing.T) {
	db := testDB(t)

	log := func(topic string, success bool) {
		t.Helper()
		err := db.LogInteraction(&Interaction{
			SessionID: "sess-001", ChildID: "child-1", Topic: topic, Success: success,
		})
		if err != nil {
			t.Fatalf("LogInteraction: %v", err)
		}
	}

	log("gravity", true)
	log("gravity", true)
	log("gravity", false)
	log("animals", false)
	log("", true) // no topic, excluded

	stats, err := db.TopicSuccessRates("child-1")
	if err != nil {
		t.Fatalf("TopicSuccessRates: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("got %d stats, want 2", len(stats))
	}
	if stats[0].Topic != "gravity" || stats[0].Attempts != 3 || stats[0].Successes != 2 {
		t.Errorf("gravity stat = %+v", stats[0])
	}
	if stats[1].Topic != "animals" || stats[1].Attempts != 1 || stats[1].Successes != 0 {
		t.Errorf("animals stat = %+v", stats[1])
	}
}

func TestCompletedTopics(t *testing.T) {
	db := testDB(t)

	db.LogInteraction(&Interaction{SessionID: "s", ChildID: "child-1", Topic: "gravity", Success: true})
	db.LogInteraction(&Interaction{SessionID: "s", ChildID: "child-1", Topic: "gravity", Success: true})
	db.LogInteraction(&Interaction{SessionID: "s", ChildID: "child-1", Topic: "animals", Success: false})

	topics, err := db.CompletedTopics("child-1")
	if err != nil {
		t.Fatalf("CompletedTopics: %v", err)
	}
	if len(topics) != 1 || topics[0] != "gravity" {
		t.Errorf("topics = %v, want [gravity]", topics)
	}
}

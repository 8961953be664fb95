package conversation

import "testing"

func TestFlags(t *testing.T) {
	flags := Flags{
		"client_uncertain": "true",
		"stage":            "early",
		"disabled":         "false",
	}

	tests := []struct {
		name  string
		check func() bool
		want  bool
	}{
		{"boolean set", func() bool { return flags.IsSet("client_uncertain") }, true},
		{"boolean false value", func() bool { return flags.IsSet("disabled") }, false},
		{"boolean missing", func() bool { return flags.IsSet("absent") }, false},
		{"value equals", func() bool { return flags.Equals("stage", "early") }, true},
		{"value differs", func() bool { return flags.Equals("stage", "late") }, false},
		{"empty expected degrades to IsSet", func() bool { return flags.Equals("client_uncertain", "") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFlagsCloneIsIndependent(t *testing.T) {
	original := Flags{"a": "true"}
	clone := original.Clone()
	clone["b"] = "true"

	if _, ok := original["b"]; ok {
		t.Error("mutating the clone leaked into the original")
	}
}

func TestSatisfiedSet(t *testing.T) {
	set := make(SatisfiedSet)

	set.Mark("IF02", "pricing")

	if !set.Has("IF02", "pricing") {
		t.Error("Has() = false for a marked pair")
	}
	if set.Has("IF02", "expansion") {
		t.Error("Has() = true for a different topic")
	}
	if set.Has("IF06", "pricing") {
		t.Error("Has() = true for a different rule")
	}

	// The empty topic is its own lifecycle.
	set.Mark("IF02", "")
	if !set.Has("IF02", "") {
		t.Error("Has() = false for the empty-topic pair")
	}

	clone := set.Clone()
	clone.Mark("IF09", "pricing")
	if set.Has("IF09", "pricing") {
		t.Error("mutating the clone leaked into the original")
	}
}

func TestTurnContextTopics(t *testing.T) {
	turnCtx := &TurnContext{
		OpenTopics:   []string{"expansion", "pricing"},
		ClosedTopics: []string{"intro"},
	}

	if got := turnCtx.CurrentTopic(); got != "pricing" {
		t.Errorf("CurrentTopic() = %q, want %q", got, "pricing")
	}

	if !turnCtx.TopicClosed("intro") {
		t.Error("TopicClosed(intro) = false, want true")
	}
	if turnCtx.TopicClosed("pricing") {
		t.Error("TopicClosed(pricing) = true for an open topic")
	}

	// Empty name refers to the current topic.
	if turnCtx.TopicClosed("") {
		t.Error("TopicClosed(\"\") = true while the current topic is open")
	}

	// No open topics: no current topic, empty name never closed.
	bare := &TurnContext{ClosedTopics: []string{"intro"}}
	if got := bare.CurrentTopic(); got != "" {
		t.Errorf("CurrentTopic() = %q, want empty", got)
	}
	if bare.TopicClosed("") {
		t.Error("TopicClosed(\"\") = true with no current topic")
	}
}

package models

import "testing"

func TestMatchStatusTerminal(t *testing.T) {
	cases := map[MatchStatus]bool{
		MatchScheduled: false,
		MatchPostponed: false,
		MatchCompleted: true,
		MatchCancelled: true,
	}
	for status, want := range cases {
		if got := status.Terminal(); got != want {
			t.Errorf("Terminal(%q) = %v, want %v", status, got, want)
		}
	}
}

func TestMatchCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from MatchStatus
		to   MatchStatus
		want bool
	}{
		{"scheduled to completed", MatchScheduled, MatchCompleted, true},
		{"scheduled to cancelled", MatchScheduled, MatchCancelled, true},
		{"scheduled to postponed", MatchScheduled, MatchPostponed, true},
		{"scheduled to scheduled", MatchScheduled, MatchScheduled, false},
		{"postponed back to scheduled", MatchPostponed, MatchScheduled, true},
		{"postponed to completed", MatchPostponed, MatchCompleted, true},
		{"postponed to cancelled", MatchPostponed, MatchCancelled, true},
		{"completed to scheduled", MatchCompleted, MatchScheduled, false},
		{"completed to cancelled", MatchCompleted, MatchCancelled, false},
		{"cancelled to scheduled", MatchCancelled, MatchScheduled, false},
		{"cancelled to completed", MatchCancelled, MatchCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Match{Status: tt.from}
			if got := m.CanTransition(tt.to); got != tt.want {
				t.Errorf("CanTransition(%q -> %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestMatchParticipants(t *testing.T) {
	m := &Match{Team1ID: 7, Team2ID: 9}

	if !m.HasParticipant(7) || !m.HasParticipant(9) {
		t.Fatal("expected both teams to be participants")
	}
	if m.HasParticipant(8) {
		t.Fatal("team 8 should not be a participant")
	}
	if got := m.Opponent(7); got != 9 {
		t.Errorf("Opponent(7) = %d, want 9", got)
	}
	if got := m.Opponent(9); got != 7 {
		t.Errorf("Opponent(9) = %d, want 7", got)
	}
}

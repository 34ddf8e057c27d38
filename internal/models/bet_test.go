package models

import (
	"errors"
	"testing"
)

func TestParseBetType(t *testing.T) {
	cases := []struct {
		input   string
		want    BetType
		wantErr bool
	}{
		{"winner", BetTypeWinner, false},
		{"place", BetTypePlace, false},
		{"trifecta", BetTypeTrifecta, false},
		{"exacta", "", true},
		{"WINNER", "", true},
		{"", "", true},
	}

	for _, tc := range cases {
		got, err := ParseBetType(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseBetType(%q): expected error, got %q", tc.input, got)
			} else if !errors.Is(err, ErrInvalidBetType) {
				t.Errorf("ParseBetType(%q): error should wrap ErrInvalidBetType, got %v", tc.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseBetType(%q): unexpected error %v", tc.input, err)
		}
		if got != tc.want {
			t.Errorf("ParseBetType(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestSelectionSize(t *testing.T) {
	if n := BetTypeWinner.SelectionSize(); n != 1 {
		t.Errorf("winner selection size = %d, want 1", n)
	}
	if n := BetTypePlace.SelectionSize(); n != 1 {
		t.Errorf("place selection size = %d, want 1", n)
	}
	if n := BetTypeTrifecta.SelectionSize(); n != 3 {
		t.Errorf("trifecta selection size = %d, want 3", n)
	}
}

func TestNewBetCopiesSelection(t *testing.T) {
	selection := []int{3, 1, 2}
	bet := NewBet("u1", BetTypeTrifecta, 5.0, selection)

	selection[0] = 99
	if bet.Selection[0] != 3 {
		t.Errorf("bet selection mutated through caller slice: got %v", bet.Selection)
	}
	if bet.PlacedAt.IsZero() {
		t.Error("expected bet to be timestamped")
	}
}

func TestUserIsSynthetic(t *testing.T) {
	synthetic := NewUser("ai_1a2b3c4d", "Lucky Lou", 10.0)
	human := NewUser("7f00aa11-aaaa-bbbb-cccc-0123456789ab", "alice", 10.0)

	if !synthetic.IsSynthetic() {
		t.Error("ai_ prefixed user should be synthetic")
	}
	if human.IsSynthetic() {
		t.Error("uuid user should not be synthetic")
	}
	if !human.Connected {
		t.Error("new users start connected")
	}
}

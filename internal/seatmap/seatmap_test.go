package seatmap

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		seat   int
		wantID int64
		wantOK bool
	}{
		{name: "first seat", seat: 1, wantID: 8397, wantOK: true},
		{name: "seat 3", seat: 3, wantID: 8357, wantOK: true},
		{name: "seat 5", seat: 5, wantID: 8376, wantOK: true},
		{name: "last seat", seat: 60, wantID: 8338, wantOK: true},
		{name: "below range", seat: 0, wantOK: false},
		{name: "above range", seat: 61, wantOK: false},
		{name: "negative", seat: -4, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := Resolve(tt.seat)
			if ok != tt.wantOK {
				t.Fatalf("Resolve(%d) ok = %v, want %v", tt.seat, ok, tt.wantOK)
			}
			if ok && id != tt.wantID {
				t.Errorf("Resolve(%d) = %d, want %d", tt.seat, id, tt.wantID)
			}
		})
	}
}

func TestResolveString(t *testing.T) {
	tests := []struct {
		name   string
		seat   string
		wantID int64
		wantOK bool
	}{
		{name: "numeric", seat: "5", wantID: 8376, wantOK: true},
		{name: "empty", seat: "", wantOK: false},
		{name: "not a number", seat: "abc", wantOK: false},
		{name: "out of range", seat: "99", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ResolveString(tt.seat)
			if ok != tt.wantOK {
				t.Fatalf("ResolveString(%q) ok = %v, want %v", tt.seat, ok, tt.wantOK)
			}
			if ok && id != tt.wantID {
				t.Errorf("ResolveString(%q) = %d, want %d", tt.seat, id, tt.wantID)
			}
		})
	}
}

func TestTableIsCompleteBijection(t *testing.T) {
	if len(Seats()) != MaxSeat {
		t.Fatalf("expected %d seats, got %d", MaxSeat, len(Seats()))
	}

	seen := make(map[int64]int)
	for n := MinSeat; n <= MaxSeat; n++ {
		id, ok := Resolve(n)
		if !ok {
			t.Fatalf("seat %d missing from table", n)
		}
		if prev, dup := seen[id]; dup {
			t.Errorf("seat id %d mapped from both %d and %d", id, prev, n)
		}
		seen[id] = n
	}
}

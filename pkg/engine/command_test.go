package engine

import (
	"errors"
	"testing"
)

func TestParseInstruction(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Command
	}{
		{"settle", []byte{0, 0, 0, 0}, Settle},
		{"open long", []byte{1, 0, 0, 0}, OpenLong},
		{"open short", []byte{2, 0, 0, 0}, OpenShort},
		// Unknown-but-well-formed codes parse; Apply rejects them.
		{"unknown code", []byte{9, 0, 0, 0}, Command(9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInstruction(tt.data)
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("command = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseInstruction_Malformed(t *testing.T) {
	for _, data := range [][]byte{nil, {1}, {1, 0, 0}, {1, 0, 0, 0, 0}} {
		if _, err := ParseInstruction(data); !errors.Is(err, ErrMalformedInstruction) {
			t.Errorf("len %d: err = %v, want ErrMalformedInstruction", len(data), err)
		}
	}
}

func TestCommandEncodeRoundTrip(t *testing.T) {
	for _, cmd := range []Command{Settle, OpenLong, OpenShort} {
		got, err := ParseInstruction(cmd.Encode())
		if err != nil {
			t.Fatalf("%v: %v", cmd, err)
		}
		if got != cmd {
			t.Errorf("round trip: got %v, want %v", got, cmd)
		}
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package refresh

import (
	"testing"
	"time"
)

func TestDecide(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	at := func(ms int) time.Time { return base.Add(time.Duration(ms) * time.Millisecond) }
	var absent time.Time

	tests := []struct {
		name    string
		now     time.Time
		last    time.Time
		pending time.Time
		want    Decision
	}{
		{"first render", at(0), absent, absent, Allow},
		{"first render with pending", at(50), absent, at(10), Allow},
		{"pending too soon", at(200), at(0), at(200), Suppress},
		{"pending exactly at interval", at(1000), at(0), at(200), Allow},
		{"pending past interval", at(1500), at(0), at(200), Allow},
		{"nothing pending after interval", at(5000), at(0), absent, Suppress},
		{"clock behind last render", at(0), at(300), at(0), Suppress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.now, tt.last, tt.pending, time.Second)
			if got != tt.want {
				t.Errorf("Decide() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecisionString(t *testing.T) {
	if Allow.String() != "allow" {
		t.Errorf("Allow.String() = %q", Allow.String())
	}
	if Suppress.String() != "suppress" {
		t.Errorf("Suppress.String() = %q", Suppress.String())
	}
	if Decision(42).String() != "unknown" {
		t.Errorf("Decision(42).String() = %q", Decision(42).String())
	}
}

func TestKey(t *testing.T) {
	k := NewKey("irc.libera.chat", "#go-nuts")
	if k.IsZero() {
		t.Error("populated key reported zero")
	}
	if !(Key{}).IsZero() {
		t.Error("zero key not reported zero")
	}
	if k.String() != "#go-nuts@irc.libera.chat" {
		t.Errorf("String() = %q", k.String())
	}
	if k != NewKey("irc.libera.chat", "#go-nuts") {
		t.Error("keys with equal parts must compare equal")
	}
}

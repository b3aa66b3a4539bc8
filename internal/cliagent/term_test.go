package cliagent

import "testing"

func TestWrapToWidth_BreaksLongLineByRuneCount(t *testing.T) {
	lines := wrapToWidth("あいうえおかきくけこ", 5)
	if len(lines) != 2 || lines[0] != "あいうえお" || lines[1] != "かきくけこ" {
		t.Fatalf("lines = %v", lines)
	}
}

func TestWrapToWidth_PreservesExistingNewlines(t *testing.T) {
	lines := wrapToWidth("line one\nline two", 80)
	if len(lines) != 2 || lines[0] != "line one" || lines[1] != "line two" {
		t.Fatalf("lines = %v", lines)
	}
}

func TestWrapToWidth_EmptyLineKept(t *testing.T) {
	lines := wrapToWidth("a\n\nb", 80)
	if len(lines) != 3 || lines[1] != "" {
		t.Fatalf("lines = %v", lines)
	}
}

func TestWrapToWidth_NonPositiveWidthReturnsTextUnsplit(t *testing.T) {
	lines := wrapToWidth("hello\nworld", 0)
	if len(lines) != 1 || lines[0] != "hello\nworld" {
		t.Fatalf("lines = %v", lines)
	}
}

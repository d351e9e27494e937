package main

import (
	"errors"
	"testing"
)

func TestMustCleansUpBeforeExit(t *testing.T) {
	prevCleanup, prevExit := cleanup, exit
	t.Cleanup(func() { cleanup, exit = prevCleanup, prevExit })

	cleaned, code := false, -1
	cleanup = func() { cleaned = true }
	exit = func(c int) {
		if !cleaned {
			t.Fatal("exit before cleanup")
		}
		code = c
	}

	must(errors.New("boom"))
	if !cleaned || code != 1 {
		t.Fatalf("cleaned=%v code=%d", cleaned, code)
	}
}

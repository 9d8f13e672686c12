package lock

import (
	"context"
	"testing"
)

func TestKey(t *testing.T) {
	if got := Key("lab", "65f0000000000000000000a1"); got != "lab:65f0000000000000000000a1" {
		t.Errorf("Key() = %q", got)
	}
}

func TestNopLocker(t *testing.T) {
	var l Locker = NopLocker{}
	release, err := l.Acquire(context.Background(), Key("equipment", "1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	release()
	release()
}

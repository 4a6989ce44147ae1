package envutil

import (
	"testing"
	"time"
)

func TestBool(t *testing.T) {
	cases := map[string]bool{"1": true, "yes": true, "off": false, "FALSE": false}
	for raw, want := range cases {
		t.Setenv("LEVELUP_TEST_BOOL", raw)
		if got := Bool("LEVELUP_TEST_BOOL", !want); got != want {
			t.Fatalf("Bool(%q): want=%v got=%v", raw, want, got)
		}
	}
	t.Setenv("LEVELUP_TEST_BOOL", "maybe")
	if got := Bool("LEVELUP_TEST_BOOL", true); !got {
		t.Fatalf("unparseable should fall back to default")
	}
}

func TestDuration(t *testing.T) {
	t.Setenv("LEVELUP_TEST_DUR", "250ms")
	if got := Duration("LEVELUP_TEST_DUR", time.Second); got != 250*time.Millisecond {
		t.Fatalf("Duration: want=250ms got=%v", got)
	}
	t.Setenv("LEVELUP_TEST_DUR", "3")
	if got := Duration("LEVELUP_TEST_DUR", time.Second); got != 3*time.Second {
		t.Fatalf("Duration seconds: want=3s got=%v", got)
	}
	t.Setenv("LEVELUP_TEST_DUR", "soon")
	if got := Duration("LEVELUP_TEST_DUR", time.Second); got != time.Second {
		t.Fatalf("Duration fallback: want=1s got=%v", got)
	}
}

func TestIntAndString(t *testing.T) {
	t.Setenv("LEVELUP_TEST_INT", "x")
	if got := Int("LEVELUP_TEST_INT", 5); got != 5 {
		t.Fatalf("Int fallback: want=5 got=%d", got)
	}
	t.Setenv("LEVELUP_TEST_STR", "  val ")
	if got := String("LEVELUP_TEST_STR", "def"); got != "val" {
		t.Fatalf("String: want=val got=%q", got)
	}
}

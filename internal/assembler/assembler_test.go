package assembler

import (
	"errors"
	"testing"

	"github.com/rzbill/ringlog/internal/errorx"
)

func TestCompleteAcrossWrites(t *testing.T) {
	a := New(0)
	if _, err := a.Write([]byte("hel")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if a.Complete() {
		t.Fatalf("partial write reported complete")
	}
	if !a.Pending() || a.Len() != 3 {
		t.Fatalf("pending len = %d", a.Len())
	}
	if _, err := a.Write([]byte("lo\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !a.Complete() {
		t.Fatalf("expected complete")
	}
	got := a.Take()
	if string(got) != "hello\n" {
		t.Fatalf("take = %q", got)
	}
	if a.Pending() {
		t.Fatalf("assembler not reset after take")
	}
}

func TestCompleteOnlyChecksTail(t *testing.T) {
	a := New(0)
	_, _ = a.Write([]byte("ab\ncd"))
	if a.Complete() {
		t.Fatalf("embedded terminator must not complete the record")
	}
	_, _ = a.Write([]byte("e\n"))
	if got := string(a.Take()); got != "ab\ncde\n" {
		t.Fatalf("take = %q", got)
	}
}

func TestNextSplitsLines(t *testing.T) {
	a := New(0)
	_, _ = a.Write([]byte("one\ntw"))
	line, ok := a.Next()
	if !ok || string(line) != "one\n" {
		t.Fatalf("next = %q, %v", line, ok)
	}
	if _, ok := a.Next(); ok {
		t.Fatalf("partial line returned")
	}
	_, _ = a.Write([]byte("o\nthree\n"))
	var got []string
	for {
		line, ok := a.Next()
		if !ok {
			break
		}
		got = append(got, string(line))
	}
	if len(got) != 2 || got[0] != "two\n" || got[1] != "three\n" {
		t.Fatalf("lines = %q", got)
	}
	if a.Pending() {
		t.Fatalf("unexpected pending bytes: %d", a.Len())
	}
}

func TestNextLineIsIndependentCopy(t *testing.T) {
	a := New(0)
	_, _ = a.Write([]byte("a\nbbbb"))
	line, _ := a.Next()
	_, _ = a.Write([]byte("cc\n"))
	if string(line) != "a\n" {
		t.Fatalf("returned line mutated: %q", line)
	}
	rest, _ := a.Next()
	if string(rest) != "bbbbcc\n" {
		t.Fatalf("rest = %q", rest)
	}
}

func TestLimitDiscardsPending(t *testing.T) {
	a := New(4)
	_, _ = a.Write([]byte("abc"))
	_, err := a.Write([]byte("de"))
	if !errors.Is(err, errorx.ErrAllocation) {
		t.Fatalf("want ErrAllocation, got %v", err)
	}
	if a.Pending() {
		t.Fatalf("pending bytes kept after limit error")
	}
}

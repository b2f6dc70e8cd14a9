package preprocessor

import "testing"

func TestDefineArithmetic(t *testing.T) {
	scope := NewScope(nil)

	src := "#define VAL_1 3\n#define VAL_2 5\n#define VAL_3 (VAL_1 * VAL_2)\nresult=<VAL_3>"
	if err := scope.AddFile("top", src); err != nil {
		t.Fatalf("AddFile: %v", err)
	}

	got, err := scope.Evaluate("top")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	want := "result=15\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestForLoopArithmetic(t *testing.T) {
	scope := NewScope(nil)

	src := "#define MAX 3\n#for i in range(MAX)\n v=$(i*2)\n#endfor\n"
	if err := scope.AddFile("top", src); err != nil {
		t.Fatalf("AddFile: %v", err)
	}

	got, err := scope.Evaluate("top")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	want := " v=0\n v=2\n v=4\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestIncludeAndCycleDetection(t *testing.T) {
	scope := NewScope(nil)
	if err := scope.AddFile("a", `#include "b"`); err != nil {
		t.Fatal(err)
	}

	if err := scope.AddFile("b", `#include "a"`); err != nil {
		t.Fatal(err)
	}

	if _, err := scope.Evaluate("a"); err == nil {
		t.Fatal("expected cyclic include error")
	}
}

func TestIfElifElse(t *testing.T) {
	scope := NewScope(nil)

	src := "#define N 2\n#if N == 1\none\n#elif N == 2\ntwo\n#else\nother\n#endif\n"
	if err := scope.AddFile("top", src); err != nil {
		t.Fatal(err)
	}

	got, err := scope.Evaluate("top")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if got != "two\n" {
		t.Errorf("got %q, want %q", got, "two\n")
	}
}

func TestLegacyDivisionCoercion(t *testing.T) {
	scope := NewScope(nil)
	if err := scope.AddFile("top", "#define X 7 / 2\nresult=<X>"); err != nil {
		t.Fatal(err)
	}

	got, err := scope.Evaluate("top")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	// "/" is a legacy synonym for "//" (§4.1, §9 open question a): 7/2
	// truncates to 3, not 3.5.
	if got != "result=3\n" {
		t.Errorf("got %q, want %q", got, "result=3\n")
	}
}

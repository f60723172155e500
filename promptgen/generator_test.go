package promptgen

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// stubClient scripts Client responses and records every call.
type stubClient struct {
	generate func(prompt string) (string, error)
	chat     func(system, user string) (string, error)

	generatePrompts []string
	chatCalls       int
}

func (s *stubClient) Generate(_ context.Context, prompt string, _ GenOptions) (string, error) {
	s.generatePrompts = append(s.generatePrompts, prompt)
	if s.generate == nil {
		return "", errors.New("unexpected Generate call")
	}
	return s.generate(prompt)
}

func (s *stubClient) Chat(_ context.Context, system, user string, _ GenOptions) (string, error) {
	s.chatCalls++
	if s.chat == nil {
		return "", errors.New("unexpected Chat call")
	}
	return s.chat(system, user)
}

func TestGenerator_SeedSanitizedIntoInstruction(t *testing.T) {
	t.Parallel()

	stub := &stubClient{generate: func(string) (string, error) {
		return "1woman, red hair, soft light", nil
	}}
	gen := NewGenerator(stub, Options{VariantsPerSeed: 1, SafeAdultTags: true})

	got, err := gen.GenerateAll(context.Background(), []string{"1girl, red hair"})
	if err != nil {
		t.Fatalf("GenerateAll: %v", err)
	}
	if len(got) != 1 || got[0] != "1woman, red hair, soft light" {
		t.Fatalf("variants=%v", got)
	}
	if len(stub.generatePrompts) != 1 {
		t.Fatalf("generate calls=%d, want 1", len(stub.generatePrompts))
	}
	if !strings.Contains(stub.generatePrompts[0], "Seed: 1woman, red hair\n") {
		t.Fatalf("instruction did not carry the sanitized seed:\n%s", stub.generatePrompts[0])
	}
}

func TestGenerator_RetryBound(t *testing.T) {
	t.Parallel()

	excluded := ExclusionSet{}
	excluded.Add("red hair")

	stub := &stubClient{generate: func(string) (string, error) {
		return "red hair, blue dress", nil
	}}
	gen := NewGenerator(stub, Options{
		VariantsPerSeed: 1,
		Excluded:        excluded,
		ExcludeMode:     ExcludeReject,
		Retries:         3,
	})

	got, err := gen.GenerateAll(context.Background(), []string{"portrait"})
	if err != nil {
		t.Fatalf("GenerateAll: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected exhausted slot to emit nothing, got %v", got)
	}
	if len(stub.generatePrompts) != 4 {
		t.Fatalf("attempts=%d, want retries+1=4", len(stub.generatePrompts))
	}
}

func TestGenerator_DropModeSalvagesCandidate(t *testing.T) {
	t.Parallel()

	excluded := ExclusionSet{}
	excluded.Add("b")

	stub := &stubClient{generate: func(string) (string, error) {
		return "a, b, c", nil
	}}
	gen := NewGenerator(stub, Options{VariantsPerSeed: 1, Excluded: excluded, ExcludeMode: ExcludeDrop})

	got, err := gen.GenerateAll(context.Background(), []string{"seed"})
	if err != nil {
		t.Fatalf("GenerateAll: %v", err)
	}
	if len(got) != 1 || got[0] != "a, c" {
		t.Fatalf("variants=%v, want [a, c]", got)
	}
	if len(stub.generatePrompts) != 1 {
		t.Fatalf("attempts=%d, want 1 (no retry needed in drop mode)", len(stub.generatePrompts))
	}
}

func TestGenerator_LazyEmitStopsServiceCalls(t *testing.T) {
	t.Parallel()

	errStop := errors.New("stop")
	stub := &stubClient{generate: func(string) (string, error) {
		return "a, b", nil
	}}
	gen := NewGenerator(stub, Options{VariantsPerSeed: 2})

	err := gen.Generate(context.Background(), []string{"s1", "s2"}, func(string) error {
		return errStop
	})
	if !errors.Is(err, errStop) {
		t.Fatalf("err=%v, want errStop", err)
	}
	if len(stub.generatePrompts) != 1 {
		t.Fatalf("generate calls=%d, want exactly 1 before stopping", len(stub.generatePrompts))
	}
}

func TestGenerator_ChatMLFallback(t *testing.T) {
	t.Parallel()

	stub := &stubClient{}
	stub.generate = func(prompt string) (string, error) {
		if len(stub.generatePrompts) == 1 {
			return "   ", nil // first attempt comes back blank
		}
		return "a, b", nil
	}
	gen := NewGenerator(stub, Options{VariantsPerSeed: 1, ChatMLFallback: true})

	got, err := gen.GenerateAll(context.Background(), []string{"seed"})
	if err != nil {
		t.Fatalf("GenerateAll: %v", err)
	}
	if len(got) != 1 || got[0] != "a, b" {
		t.Fatalf("variants=%v", got)
	}
	if len(stub.generatePrompts) != 2 {
		t.Fatalf("generate calls=%d, want 2 (plain then ChatML)", len(stub.generatePrompts))
	}
	fallback := stub.generatePrompts[1]
	if !strings.Contains(fallback, "<|im_start|>system") || !strings.Contains(fallback, "<|im_start|>assistant") {
		t.Fatalf("fallback prompt missing ChatML markup:\n%s", fallback)
	}
}

func TestGenerator_NoFallbackWhenDisabled(t *testing.T) {
	t.Parallel()

	stub := &stubClient{generate: func(string) (string, error) {
		return "", nil
	}}
	gen := NewGenerator(stub, Options{VariantsPerSeed: 1, Retries: 0})

	got, err := gen.GenerateAll(context.Background(), []string{"seed"})
	if err != nil {
		t.Fatalf("GenerateAll: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("variants=%v, want none", got)
	}
	if len(stub.generatePrompts) != 1 {
		t.Fatalf("generate calls=%d, want 1 (no ChatML retry)", len(stub.generatePrompts))
	}
}

func TestGenerator_ServiceErrorAborts(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	stub := &stubClient{generate: func(string) (string, error) {
		return "", boom
	}}
	gen := NewGenerator(stub, Options{VariantsPerSeed: 3, Retries: 5})

	emitted := 0
	err := gen.Generate(context.Background(), []string{"a", "b"}, func(string) error {
		emitted++
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v, want the service error", err)
	}
	if emitted != 0 {
		t.Fatalf("emitted=%d, want 0", emitted)
	}
	if len(stub.generatePrompts) != 1 {
		t.Fatalf("generate calls=%d, want 1 (no retry on service errors)", len(stub.generatePrompts))
	}
}

func TestGenerator_ChatMode(t *testing.T) {
	t.Parallel()

	var gotSystem string
	stub := &stubClient{chat: func(system, user string) (string, error) {
		gotSystem = system
		if !strings.Contains(user, "Seed: x") {
			return "", errors.New("instruction missing seed")
		}
		return "x, y", nil
	}}
	gen := NewGenerator(stub, Options{Mode: ModeChat, VariantsPerSeed: 1})

	got, err := gen.GenerateAll(context.Background(), []string{"x"})
	if err != nil {
		t.Fatalf("GenerateAll: %v", err)
	}
	if len(got) != 1 || got[0] != "x, y" {
		t.Fatalf("variants=%v", got)
	}
	if gotSystem != DefaultChatSystemPrompt {
		t.Fatalf("system=%q, want the default chat system prompt", gotSystem)
	}
	if stub.chatCalls != 1 || len(stub.generatePrompts) != 0 {
		t.Fatalf("chat=%d generate=%d", stub.chatCalls, len(stub.generatePrompts))
	}
}

func TestGenerator_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stub := &stubClient{generate: func(string) (string, error) {
		return "a", nil
	}}
	gen := NewGenerator(stub, Options{VariantsPerSeed: 1})

	err := gen.Generate(ctx, []string{"seed"}, func(string) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
	if len(stub.generatePrompts) != 0 {
		t.Fatal("no service call expected after cancellation")
	}
}

func TestNormalizeLine(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want string
	}{
		{"  a, b, c  ", "a, b, c"},
		{`"a, b"`, "a, b"},
		{"'a, b'", "a, b"},
		{"```a, b```", "a, b"},
		{"a, b\nignored second line", "a, b"},
		{"a, b,,;", "a, b"},
		{"a, b ,", "a, b"},
		{"", ""},
		{"\n\n", ""},
	}
	for _, c := range cases {
		if got := NormalizeLine(c.in); got != c.want {
			t.Fatalf("NormalizeLine(%q)=%q, want %q", c.in, got, c.want)
		}
	}
}

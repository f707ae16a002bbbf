package service

import (
	"strings"
	"testing"

	"github.com/toneforge/toneforge/internal/config"
)

func newTestSanitizer() *Sanitizer {
	return NewSanitizer(config.Defaults().Sanitizer)
}

func TestSanitizeExtractsAfterMarker(t *testing.T) {
	s := newTestSanitizer()
	prompt := promptPrefix + "hi" + promptSuffix
	raw := prompt + "Hello there.\nThis works."

	got := s.Sanitize(raw, prompt)
	if got != "Hello there.\nThis works." {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestSanitizeUsesLastMarker(t *testing.T) {
	s := newTestSanitizer()
	raw := "Revised version:\nfirst try\nRevised version:\nsecond try"

	got := s.Sanitize(raw, "")
	if got != "second try" {
		t.Fatalf("expected text after last marker, got %q", got)
	}
}

func TestSanitizeStripsPromptPrefixWithoutMarker(t *testing.T) {
	s := newTestSanitizer()
	prompt := "Rewrite this:\n"
	raw := prompt + "A clean reply."

	got := s.Sanitize(raw, prompt)
	if got != "A clean reply." {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestSanitizePromptEchoOnlyIsEmpty(t *testing.T) {
	s := newTestSanitizer()
	prompt := "Rewrite this:\n"

	if got := s.Sanitize(prompt, prompt); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
}

func TestSanitizeShortCompletionSurvives(t *testing.T) {
	s := newTestSanitizer()
	// Completion-only transports return just the generated text, which is
	// routinely shorter than the prompt and never repeats it.
	prompt := promptPrefix + "a long draft goes here with plenty of words" + promptSuffix

	if got := s.Sanitize("Sounds good, thanks!", prompt); got != "Sounds good, thanks!" {
		t.Fatalf("expected completion kept, got %q", got)
	}
}

func TestSanitizeStopsAtHallucination(t *testing.T) {
	s := newTestSanitizer()
	raw := "Here is the reply.\nOriginal: something the model made up\nmore junk"

	got := s.Sanitize(raw, "")
	if got != "Here is the reply." {
		t.Fatalf("expected truncation at hallucination, got %q", got)
	}
}

func TestSanitizeKeepsClosingAndSignature(t *testing.T) {
	s := newTestSanitizer()
	raw := "Thanks, will check.\nBest regards\nJohn"

	got := s.Sanitize(raw, "")
	if got != raw {
		t.Fatalf("expected closing and signature kept, got %q", got)
	}
}

func TestSanitizeTruncatesAfterSignatureLines(t *testing.T) {
	s := newTestSanitizer()
	raw := "Sounds good.\nKind regards\nAnna\nACME Corp\nPS: ignore this\nand this too"

	got := s.Sanitize(raw, "")
	want := "Sounds good.\nKind regards\nAnna\nACME Corp"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestSanitizeStopsAtLongLineAfterClosing(t *testing.T) {
	s := newTestSanitizer()
	long := strings.Repeat("x", 60)
	raw := "Done.\nBest regards\nAlice\n" + long

	got := s.Sanitize(raw, "")
	want := "Done.\nBest regards\nAlice"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestSanitizeSignatureLengthCountsRunes(t *testing.T) {
	s := newTestSanitizer()
	// 30 runes but 60 bytes; the signature limit is per character.
	sig := strings.Repeat("ü", 30)
	raw := "Passt gut.\nViele Grüße\n" + sig

	if got := s.Sanitize(raw, ""); got != raw {
		t.Fatalf("expected umlaut signature kept, got %q", got)
	}
}

func TestSanitizeGermanClosing(t *testing.T) {
	s := newTestSanitizer()
	raw := "Das klingt gut.\nMit freundlichen Grüßen\nHans\nirrelevant trailing line that keeps going well past fifty chars"

	got := s.Sanitize(raw, "")
	want := "Das klingt gut.\nMit freundlichen Grüßen\nHans"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestSanitizeBlankLinePeeksForHallucination(t *testing.T) {
	s := newTestSanitizer()
	body := []string{"l1", "l2", "l3", "l4", "l5", "l6"}
	raw := strings.Join(body, "\n") + "\n\nDraft reply:\nfake continuation"

	got := s.Sanitize(raw, "")
	if got != strings.Join(body, "\n") {
		t.Fatalf("expected body only, got %q", got)
	}
}

func TestSanitizeBlankLineWithinShortBodyIsSkipped(t *testing.T) {
	s := newTestSanitizer()

	got := s.Sanitize("first\n\nsecond", "")
	if got != "first\nsecond" {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestSanitizeNoClosingPassesThrough(t *testing.T) {
	s := newTestSanitizer()
	raw := "Just a plain reply\nwith two lines"

	if got := s.Sanitize(raw, ""); got != raw {
		t.Fatalf("expected passthrough, got %q", got)
	}
}

func TestSanitizeEmptyInput(t *testing.T) {
	s := newTestSanitizer()
	if got := s.Sanitize("", ""); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	s := newTestSanitizer()
	raw := "Revised version:\nThanks a lot.\nViele Grüße\nMaria"

	once := s.Sanitize(raw, "")
	twice := s.Sanitize(once, "")
	if once != twice {
		t.Fatalf("not idempotent: %q vs %q", once, twice)
	}
}

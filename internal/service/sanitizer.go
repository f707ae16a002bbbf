package service

import (
	"strings"
	"unicode/utf8"

	"github.com/toneforge/toneforge/internal/config"
)

// Sanitizer turns a raw model completion into a trustworthy reply. Raw
// generations may repeat the prompt, invent a fake "original text" section, or
// keep going past a legitimate sign-off; the scanner strips all of that
// deterministically.
//
// It runs as a finite-state line scanner (scanning -> closingFound -> done)
// over the candidate text, followed by a second trim pass over the assembled
// result. Marker sets are configuration data, not code, so more locales can
// be added without a rebuild.
type Sanitizer struct {
	marker         string
	closings       []string
	hallucinations []string
	sigMaxLen      int
	sigLookahead   int
	minBodyLines   int
	trailingKeep   int
}

// NewSanitizer creates a sanitizer from configuration.
func NewSanitizer(cfg config.Sanitizer) *Sanitizer {
	return &Sanitizer{
		marker:         cfg.CompletionMarker,
		closings:       cfg.ClosingPhrases,
		hallucinations: cfg.HallucinationMarkers,
		sigMaxLen:      cfg.SignatureMaxLen,
		sigLookahead:   cfg.SignatureLookahead,
		minBodyLines:   cfg.MinBodyLines,
		trailingKeep:   cfg.TrailingKeepLines,
	}
}

type scanState int

const (
	scanning scanState = iota
	closingFound
	done
)

// Sanitize extracts the intended reply from a raw completion. The prompt is
// used only for the fallback candidate extraction when the completion marker
// does not appear in the output.
func (s *Sanitizer) Sanitize(raw, prompt string) string {
	candidate := s.candidate(raw, prompt)
	lines := strings.Split(candidate, "\n")

	var (
		out       []string
		state     = scanning
		lookahead int
	)

	for i := 0; i < len(lines) && state != done; i++ {
		line := strings.TrimSpace(lines[i])

		switch state {
		case scanning:
			switch {
			case s.hasHallucination(line):
				// The model invented a fake dialogue turn; nothing
				// after it can be trusted.
				state = done

			case s.hasClosing(line):
				out = append(out, line)
				state = closingFound

			case line == "" && len(out) > s.minBodyLines:
				// Possible natural end: stop if the next line is a
				// hallucination, otherwise skip the blank and keep
				// going.
				if i+1 < len(lines) && s.hasHallucination(strings.TrimSpace(lines[i+1])) {
					state = done
				}

			case line != "":
				out = append(out, line)
			}

		case closingFound:
			// Up to sigLookahead short non-empty lines after the
			// closing are kept as name/signature; anything else ends
			// the reply.
			if line == "" || utf8.RuneCountInString(line) >= s.sigMaxLen || s.hasHallucination(line) {
				state = done
				break
			}
			out = append(out, line)
			lookahead++
			if lookahead >= s.sigLookahead {
				state = done
			}
		}
	}

	text := strings.TrimSpace(strings.Join(out, "\n"))
	return strings.TrimSpace(s.trimAfterClosing(text))
}

// candidate selects the text to scan: everything after the last completion
// marker when present, otherwise the raw output with a leading prompt echo
// stripped. Completion-only outputs pass through trimmed; a raw that is
// nothing but the prompt echo yields an empty candidate.
func (s *Sanitizer) candidate(raw, prompt string) string {
	if idx := strings.LastIndex(raw, s.marker); idx >= 0 {
		return strings.TrimSpace(raw[idx+len(s.marker):])
	}
	if prompt != "" && strings.HasPrefix(raw, prompt) {
		return strings.TrimSpace(raw[len(prompt):])
	}
	return strings.TrimSpace(raw)
}

// trimAfterClosing guards against signature-adjacent hallucinations the line
// scan missed: when more than trailingKeep lines follow the closing line, the
// text is cut back to trailingKeep lines after it.
func (s *Sanitizer) trimAfterClosing(text string) string {
	last := -1
	for _, closing := range s.closings {
		if idx := strings.LastIndex(text, closing); idx > last {
			last = idx
		}
	}
	if last < 0 {
		return text
	}

	lineEnd := strings.Index(text[last:], "\n")
	if lineEnd < 0 {
		return text
	}
	lineEnd += last

	after := strings.TrimSpace(text[lineEnd:])
	if after == "" || len(strings.Split(after, "\n")) <= s.trailingKeep {
		return text
	}

	end := lineEnd
	for range s.trailingKeep {
		next := strings.Index(text[end+1:], "\n")
		if next < 0 {
			return text
		}
		end += 1 + next
	}
	return text[:end]
}

func (s *Sanitizer) hasClosing(line string) bool {
	for _, p := range s.closings {
		if strings.Contains(line, p) {
			return true
		}
	}
	return false
}

func (s *Sanitizer) hasHallucination(line string) bool {
	for _, p := range s.hallucinations {
		if strings.Contains(line, p) {
			return true
		}
	}
	return false
}

// Package generation defines the port interfaces for the opaque text
// generation capability.
package generation

import "context"

// Sampling configures one generation call. Values mirror the deterministic
// low-randomness profile used for style revision.
type Sampling struct {
	MaxNewTokens      int      `yaml:"max_new_tokens"`
	MinLength         int      `yaml:"min_length"`
	Temperature       float64  `yaml:"temperature"`
	TopP              float64  `yaml:"top_p"`
	TopK              int      `yaml:"top_k"`
	RepetitionPenalty float64  `yaml:"repetition_penalty"`
	NoRepeatNgramSize int      `yaml:"no_repeat_ngram_size"`
	Stop              []string `yaml:"stop"`
}

// Generator produces a raw text completion for a prompt. Implementations are
// bound to one loaded adapter; timeouts are the implementation's concern and
// surface as ordinary errors.
type Generator interface {
	Generate(ctx context.Context, prompt string, s Sampling) (string, error)
	Close()
}

// Loader loads the base model plus the adapter stored at location and returns
// a generator bound to it.
type Loader interface {
	Load(ctx context.Context, location string) (Generator, error)
}

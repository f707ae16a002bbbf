// Package revision defines the result of a style revision request.
package revision

// Model labels reported to callers, mirroring what was actually used to
// produce the revised text.
const (
	ModelNone     = "none"     // no adapter trained yet, draft returned as-is
	ModelAdapted  = "adapted"  // tenant adapter produced the revision
	ModelFallback = "fallback" // generation failed, draft returned as-is
)

// Result is the outcome of revising a draft.
type Result struct {
	Revised     string `json:"revised"`
	UsedAdapter bool   `json:"usedAdapter"`
	ModelUsed   string `json:"modelUsed"`
}

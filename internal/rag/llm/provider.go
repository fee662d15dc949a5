package llm

import "context"

// Profile selects the generation model. Quick favours latency, detailed
// favours answer depth.
type Profile string

const (
	ProfileQuick    Profile = "quick"
	ProfileDetailed Profile = "detailed"
)

func (p Profile) Valid() bool {
	return p == ProfileQuick || p == ProfileDetailed
}

type Result struct {
	Text       string
	Model      string
	TokenCount int32
}

type Provider interface {
	Generate(ctx context.Context, profile Profile, query string, contextChunks []string, messageHistory []string) (*Result, error)
}

package conversation

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/aztralwrld/eve/pkg/model"
	"github.com/aztralwrld/eve/pkg/utils/logging"
)

// The delimiter tokens are a fixed contract with the embedded instruction
// text. Some pairs are deliberately asymmetric (a qualified open against a
// mirrored close); do not normalize them.
var (
	stateBlockRe    = regexp.MustCompile(`(?s)<<<\s*(\{.*?\})\s*>>>`)
	proposalBlockRe = regexp.MustCompile(`(?s)<<<PROPOSAL\s*(\{.*?\})\s*PROPOSAL>>>`)
	nexusBlockRe    = regexp.MustCompile(`(?s)<<<NEXUS\s*(\{.*?\})\s*NEXUS>>>`)
	visionBlockRe   = regexp.MustCompile(`(?s)<<<VISION>>>\s*(.*?)\s*<<<VISION>>>`)
)

// ParsedReply is the normalized form of one raw model reply: the cleaned
// prose plus whichever structured segments the reply carried.
type ParsedReply struct {
	Text         string
	State        *model.State
	Proposal     *model.Proposal
	Fact         *model.NexusCandidate
	VisionPrompt string
}

// ParseReply extracts the structured segments from a raw reply. Each segment
// is matched independently and first-match-only: a reply may carry any
// subset in any order. A delimited block whose payload fails to parse or
// validate is still stripped from the prose but yields no payload.
func ParseReply(raw string) *ParsedReply {
	parsed := &ParsedReply{}
	clean := raw

	// The qualified blocks are consumed before the generic state pair. The
	// state regex requires a brace right after <<<, so it cannot swallow a
	// qualified block, but stripping the qualified spans first keeps the
	// matches independent of how the model ordered them.
	if m := proposalBlockRe.FindStringSubmatch(clean); m != nil {
		clean = strings.Replace(clean, m[0], "", 1)
		parsed.Proposal = decodeSegment[model.Proposal](m[1], proposalSchema, "proposal")
	}

	if m := nexusBlockRe.FindStringSubmatch(clean); m != nil {
		clean = strings.Replace(clean, m[0], "", 1)
		parsed.Fact = decodeSegment[model.NexusCandidate](m[1], nexusSchema, "nexus")
	}

	if m := visionBlockRe.FindStringSubmatch(clean); m != nil {
		clean = strings.Replace(clean, m[0], "", 1)
		parsed.VisionPrompt = strings.TrimSpace(m[1])
	}

	if m := stateBlockRe.FindStringSubmatch(clean); m != nil {
		clean = strings.Replace(clean, m[0], "", 1)
		parsed.State = decodeSegment[model.State](m[1], stateSchema, "state")
	}

	parsed.Text = strings.TrimSpace(clean)
	return parsed
}

// decodeSegment parses one delimited JSON payload. Failures are logged and
// swallowed: a broken segment must not abort extraction of the others, and
// it is never surfaced to the user.
func decodeSegment[T any](raw string, schema resolvedSchema, name string) *T {
	var loose any
	if err := json.Unmarshal([]byte(raw), &loose); err != nil {
		logging.Default().Warn("discarding malformed segment", "segment", name, "error", err)
		return nil
	}

	if err := schema.Validate(loose); err != nil {
		logging.Default().Warn("discarding schema-invalid segment", "segment", name, "error", err)
		return nil
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		logging.Default().Warn("discarding undecodable segment", "segment", name, "error", err)
		return nil
	}

	return &v
}

// Package prompt assembles the system context for a companion session from
// the base instruction, the user settings, the nexus fact store, and the
// active evolution patches.
package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/aztralwrld/eve/pkg/model"
)

//go:embed core_instruction.md
var coreInstruction string

// CoreInstruction returns the embedded base instruction text
func CoreInstruction() string {
	return coreInstruction
}

// Input holds everything that shapes a session's operating instructions
type Input struct {
	// Base overrides the embedded core instruction when non-empty
	Base     string
	Settings model.Settings
	Facts    []*model.NexusEntry
	Patches  []*model.Patch // only active patches are rendered
}

// Assemble renders the full instruction string. It is a pure function and
// must stay byte-stable for identical inputs: the session manager diffs its
// output to decide whether the live session needs recreation.
func Assemble(in Input) string {
	base := in.Base
	if base == "" {
		base = coreInstruction
	}

	var b strings.Builder
	b.WriteString(base)

	b.WriteString("\n\nCURRENT USER SETTINGS:\n")
	fmt.Fprintf(&b, "- Detail Level: %d/100\n", in.Settings.Detail)
	fmt.Fprintf(&b, "- Creativity: %d/100\n", in.Settings.Creativity)
	fmt.Fprintf(&b, "- Warmth: %d/100\n", in.Settings.Warmth)
	fmt.Fprintf(&b, "- Developer Mode: %s\n", onOff(in.Settings.DeveloperMode))

	if len(in.Facts) > 0 {
		b.WriteString("\nNEXUS CORE (KNOWN TRUTHS ABOUT USER):\n")
		for _, f := range in.Facts {
			fmt.Fprintf(&b, "- [%s] %s\n", f.Category, f.Content)
		}
	}

	if active := model.ActivePatches(in.Patches); len(active) > 0 {
		b.WriteString("\nACTIVE EVOLUTION PATCHES (These override/augment base instructions):\n")
		for i, p := range active {
			fmt.Fprintf(&b, "PATCH %d [%s]: %s\n", i+1, p.Name, p.InstructionModifier)
		}
	}

	return b.String()
}

func onOff(v bool) string {
	if v {
		return "ON"
	}
	return "OFF"
}

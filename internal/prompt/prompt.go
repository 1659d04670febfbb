// Package prompt renders generation requests for the text-generation service.
//
// Builders are pure functions: deterministic for a given input, no I/O.
// The remaining-credit count is embedded in the edit request so the model can
// surface a low-balance notice inside the generated page when the user is
// about to run out.
package prompt

import (
	"fmt"
	"strings"

	"github.com/pagesmith/pagesmith/internal/credit"
)

// Request is a rendered generation request.
type Request struct {
	// System carries the standing instructions for the model.
	System string

	// Text carries the user-specific content: instruction plus context.
	Text string
}

const editSystem = `You are an expert web developer maintaining a single-page website for a small business.
Apply the requested change to the HTML document you are given.
Return the complete updated HTML document and nothing else: no explanations, no Markdown code fences.
Keep everything in a single self-contained HTML file with inline CSS.`

const createSystem = `You are an expert web developer building a single-page website for a small business.
Design a clean, modern, self-contained HTML page with inline CSS based on the business description.
Return the complete HTML document and nothing else: no explanations, no Markdown code fences.`

// BuildEdit renders an edit request from the current artifact, the user's
// instruction, and the credit balance that will remain after this edit
// commits.
func BuildEdit(artifact, instruction string, remainingAfter int) Request {
	var b strings.Builder
	fmt.Fprintf(&b, "Change request: %s\n\n", instruction)

	switch remainingAfter {
	case 0:
		b.WriteString("Additionally, add a small dismissible notice at the top of the page telling the owner they have run out of edit credits and should top up to keep editing.\n\n")
	case credit.EditCost:
		b.WriteString("Additionally, add a small dismissible notice at the top of the page telling the owner they have credits left for exactly one more edit.\n\n")
	}

	fmt.Fprintf(&b, "Current page:\n%s", artifact)

	return Request{System: editSystem, Text: b.String()}
}

// BuildCreate renders a first-generation request from a business description.
func BuildCreate(businessDescription string) Request {
	return Request{
		System: createSystem,
		Text:   fmt.Sprintf("Business description: %s", businessDescription),
	}
}

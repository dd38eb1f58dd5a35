package mockup

import "fmt"

const plannerSystemPrompt = "You are a mobile product designer. Decompose app ideas into distinct screens. Output ONLY JSON matching the requested schema."

const codeSystemPrompt = "You are a front-end engineer. Output ONLY the requested code with no surrounding prose. A markdown code fence around the code is acceptable."

func plannerPrompt(description string, maxScreens int) string {
	return fmt.Sprintf(`Decompose the following mobile app idea into at most %d distinct screens.
Each screen gets a short title-cased name and a one-line purpose.
Only include screens the description actually implies.

App idea:
%s`, maxScreens, description)
}

func imagePrompt(description string, screen ScreenPlan) string {
	return fmt.Sprintf(`A high-fidelity UI mockup of the %q screen of a mobile app, portrait phone aspect ratio, modern clean design, realistic placeholder content, no device frame, no watermark.
Screen purpose: %s
App idea: %s`, screen.Name, screen.Purpose, description)
}

func reactPrompt(description string, screen ScreenPlan) string {
	return fmt.Sprintf(`Write a single self-contained React function component in TypeScript (TSX) implementing the %q screen of this mobile app. Use inline styles, no external imports besides React, realistic placeholder data.
Screen purpose: %s
App idea: %s`, screen.Name, screen.Purpose, description)
}

func htmlPrompt(description string, screen ScreenPlan) string {
	return fmt.Sprintf(`Write a single self-contained HTML document (inline CSS, no JavaScript frameworks) implementing the %q screen of this mobile app, sized for a portrait phone viewport, with realistic placeholder data.
Screen purpose: %s
App idea: %s`, screen.Name, screen.Purpose, description)
}

func palettePrompt(baseColor string) string {
	return fmt.Sprintf(`Derive a UI color palette from the base color %s.
Return primary, secondary and accent as 6-digit hex colors with a leading #.
Primary should be usable for large surfaces, secondary for supporting elements and accent for calls to action; all three must work together on a light background.`, baseColor)
}

func editPrompt(instruction string) string {
	return fmt.Sprintf(`Edit the attached image as follows and return the edited image: %s
Keep everything not covered by the instruction unchanged.`, instruction)
}

// Package styles holds the static artist catalog. The set is fixed at
// compile time and immutable for the process lifetime.
package styles

import "fmt"

type Style struct {
	ID          string
	DisplayName string
	Prompt      string
	AccentColor string
	Era         string
}

var catalog = []Style{
	{
		ID:          "van-gogh",
		DisplayName: "Vincent van Gogh",
		Prompt:      "an oil painting in the style of Vincent van Gogh, thick swirling impasto brushstrokes, vivid complementary colors, post-impressionist",
		AccentColor: "#2b4f81",
		Era:         "Post-Impressionism",
	},
	{
		ID:          "monet",
		DisplayName: "Claude Monet",
		Prompt:      "an impressionist painting in the style of Claude Monet, soft dappled light, loose visible brushwork, pastel palette",
		AccentColor: "#7fa8a4",
		Era:         "Impressionism",
	},
	{
		ID:          "picasso",
		DisplayName: "Pablo Picasso",
		Prompt:      "a cubist painting in the style of Pablo Picasso, fragmented geometric planes, bold outlines, muted earth tones",
		AccentColor: "#b3672c",
		Era:         "Cubism",
	},
	{
		ID:          "matisse",
		DisplayName: "Henri Matisse",
		Prompt:      "a fauvist painting in the style of Henri Matisse, flat saturated color fields, expressive simplified shapes",
		AccentColor: "#c74a3c",
		Era:         "Fauvism",
	},
	{
		ID:          "hokusai",
		DisplayName: "Katsushika Hokusai",
		Prompt:      "a ukiyo-e woodblock print in the style of Katsushika Hokusai, flowing linework, prussian blue, flat perspective",
		AccentColor: "#1f3a5f",
		Era:         "Edo ukiyo-e",
	},
	{
		ID:          "rembrandt",
		DisplayName: "Rembrandt van Rijn",
		Prompt:      "a baroque portrait in the style of Rembrandt, dramatic chiaroscuro lighting, warm golden shadows, fine glazed detail",
		AccentColor: "#5d4423",
		Era:         "Dutch Golden Age",
	},
}

var byID = func() map[string]Style {
	m := make(map[string]Style, len(catalog))
	for _, s := range catalog {
		m[s.ID] = s
	}
	return m
}()

// All returns the catalog in display order.
func All() []Style {
	out := make([]Style, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup resolves a style identifier.
func Lookup(id string) (Style, bool) {
	s, ok := byID[id]
	return s, ok
}

// BuildPrompt renders the model prompt for a style.
func BuildPrompt(s Style) string {
	return fmt.Sprintf("Transform this photo into %s. Preserve the subject and composition of the original photo.", s.Prompt)
}

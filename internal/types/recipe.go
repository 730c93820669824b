package types

// DefaultRecipeTitle is used when the model output carries no usable title
const DefaultRecipeTitle = "Imported Recipe"

// SourceMode identifies where the text handed to the model came from
type SourceMode string

const (
	SourceText SourceMode = "text"
	SourceOCR  SourceMode = "ocr"
	SourceURL  SourceMode = "url"
)

// Valid reports whether m is a known source mode
func (m SourceMode) Valid() bool {
	switch m {
	case SourceText, SourceOCR, SourceURL:
		return true
	}
	return false
}

// RecipeRecord is the canonical recipe shape returned to the mobile client.
// Every field is always populated once a record leaves the normalizer.
type RecipeRecord struct {
	Title                       string            `json:"title"`
	IngredientsByProcessingStep []IngredientGroup `json:"ingredientsByProcessingStep"`
	Steps                       string            `json:"steps"`
	Tags                        []string          `json:"tags"`
}

// IngredientGroup is a labelled section of ingredients, e.g. "Marinade"
type IngredientGroup struct {
	Name  string           `json:"name"`
	Items []IngredientLine `json:"items"`
}

// IngredientLine is a single ingredient as written in the source
type IngredientLine struct {
	Quantity string `json:"quantity"`
	Name     string `json:"name"`
}

// FallbackRecipe wraps raw model output that could not be read as JSON
func FallbackRecipe(raw string) RecipeRecord {
	return RecipeRecord{
		Title:                       DefaultRecipeTitle,
		IngredientsByProcessingStep: []IngredientGroup{},
		Steps:                       raw,
		Tags:                        []string{},
	}
}

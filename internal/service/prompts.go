package service

import (
	"github.com/pageza/alchemorsel-import/backend/internal/types"
)

const recipeSchema = `{
    "title": "Recipe title",
    "ingredientsByProcessingStep": [
        {
            "name": "Section label such as Marinade or Dough, empty string if the recipe has no sections",
            "items": [
                {"quantity": "1 cup", "name": "flour"},
                {"quantity": "", "name": "salt to taste"}
            ]
        }
    ],
    "steps": "The full instructions as written, one step per line",
    "tags": ["dinner", "vegetarian"]
}`

const schemaRules = `Respond with exactly one JSON object and nothing else, using this structure:
` + recipeSchema + `

Rules:
- Keep ingredient sections and their items in the order they appear in the source.
- Quantities are free-form text copied from the source; do not convert units.
- Do not invent ingredients or steps that are not in the source.
- Tags are short lowercase labels (meal type, cuisine, diet).`

var systemPrompts = map[types.SourceMode]string{
	types.SourceText: `You are a recipe extraction assistant. The user pastes a recipe as free text.
` + schemaRules,

	types.SourceOCR: `You are a recipe extraction assistant. The user sends text recognised by OCR from a photo
of a cookbook page or recipe card. Expect broken lines, hyphenation, misread characters
(0/O, 1/l, rn/m) and fractions rendered as odd symbols; repair them where the intent is clear.
` + schemaRules,

	types.SourceURL: `You are a recipe extraction assistant. The user sends the visible text of a recipe webpage,
possibly preceded by JSON-LD structured data. Ignore navigation, ads, comments and the author's
life story; extract only the recipe itself.
` + schemaRules,
}

var userPrefixes = map[types.SourceMode]string{
	types.SourceText: "Extract the recipe from this text:\n\n",
	types.SourceOCR:  "Extract the recipe from this OCR output:\n\n",
	types.SourceURL:  "Extract the recipe from this webpage content:\n\n",
}

// recipeMessages builds the conversation sent to the completion service
func recipeMessages(mode types.SourceMode, input string) []Message {
	if !mode.Valid() {
		mode = types.SourceText
	}
	return []Message{
		{Role: "system", Content: systemPrompts[mode]},
		{Role: "user", Content: userPrefixes[mode] + input},
	}
}

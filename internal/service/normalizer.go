package service

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pageza/alchemorsel-import/backend/internal/types"
)

// Accepted spellings for each record field, canonical name first. Models are
// told to use the canonical names but drift towards the common recipe vocabulary.
var (
	titleKeys       = []string{"title", "name"}
	stepsKeys       = []string{"steps", "instructions", "directions"}
	ingredientKeys  = []string{"ingredientsByProcessingStep", "ingredients"}
	tagKeys         = []string{"tags"}
	groupNameKeys   = []string{"name", "step", "section", "title"}
	groupItemKeys   = []string{"items", "ingredients"}
	lineQtyKeys     = []string{"quantity", "amount"}
	lineNameKeys    = []string{"name", "ingredient", "item"}
	lineOnlyKeys    = []string{"quantity", "amount", "ingredient", "item"}
	recipeWrapperKs = []string{"recipe", "data", "result"}
)

// NormalizeResult is a normalized record plus which path produced it
type NormalizeResult struct {
	Record types.RecipeRecord
	// Structured is false when the raw text was wrapped into a fallback record
	Structured bool
}

// NormalizeRecipe converts an untrusted model completion into a RecipeRecord.
// It never fails: output that cannot be read as a JSON object is returned as a
// fallback record carrying the raw text in Steps.
func NormalizeRecipe(raw string) types.RecipeRecord {
	return Normalize(raw).Record
}

// Normalize is NormalizeRecipe that also reports whether the JSON path was taken.
//
// The JSON candidate is the span from the first '{' to the last '}'. This is
// deliberately greedy rather than brace-balanced: two separate objects in one
// completion yield an unparseable span and therefore the fallback record.
func Normalize(raw string) NormalizeResult {
	candidate, ok := extractJSONObject(raw)
	if !ok {
		return NormalizeResult{Record: types.FallbackRecipe(raw)}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &fields); err != nil || fields == nil {
		return NormalizeResult{Record: types.FallbackRecipe(raw)}
	}
	fields = unwrapRecipe(fields)

	record := types.RecipeRecord{
		Title:                       types.DefaultRecipeTitle,
		IngredientsByProcessingStep: []types.IngredientGroup{},
		Steps:                       raw,
		Tags:                        []string{},
	}
	if title, ok := firstString(fields, titleKeys); ok {
		record.Title = title
	}
	if steps, ok := decodeSteps(fields); ok {
		record.Steps = steps
	}
	for i, key := range ingredientKeys {
		value, ok := fields[key]
		if !ok || isNull(value) {
			continue
		}
		if groups, ok := decodeGroups(value, i == 0); ok {
			record.IngredientsByProcessingStep = groups
			break
		}
	}
	for _, value := range present(fields, tagKeys) {
		if tags, ok := decodeTags(value); ok {
			record.Tags = tags
			break
		}
	}

	return NormalizeResult{Record: record, Structured: true}
}

func extractJSONObject(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return "", false
	}
	return raw[start : end+1], true
}

// unwrapRecipe descends into {"recipe": {...}} style envelopes when the outer
// object carries none of the record fields itself.
func unwrapRecipe(fields map[string]json.RawMessage) map[string]json.RawMessage {
	for _, keys := range [][]string{titleKeys, stepsKeys, ingredientKeys, tagKeys} {
		if len(present(fields, keys)) > 0 {
			return fields
		}
	}
	for _, value := range present(fields, recipeWrapperKs) {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(value, &inner); err == nil && inner != nil {
			return inner
		}
	}
	return fields
}

// present returns the non-null values stored under keys, in key order
func present(fields map[string]json.RawMessage, keys []string) []json.RawMessage {
	var values []json.RawMessage
	for _, key := range keys {
		value, ok := fields[key]
		if !ok || isNull(value) {
			continue
		}
		values = append(values, value)
	}
	return values
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}

// firstString returns the first non-empty string stored under keys
func firstString(fields map[string]json.RawMessage, keys []string) (string, bool) {
	for _, value := range present(fields, keys) {
		var s string
		if err := json.Unmarshal(value, &s); err == nil && s != "" {
			return s, true
		}
	}
	return "", false
}

func decodeSteps(fields map[string]json.RawMessage) (string, bool) {
	for _, value := range present(fields, stepsKeys) {
		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			if s != "" {
				return s, true
			}
			continue
		}

		var list []json.RawMessage
		if err := json.Unmarshal(value, &list); err != nil {
			continue
		}
		lines := make([]string, 0, len(list))
		for _, item := range list {
			var line string
			if err := json.Unmarshal(item, &line); err == nil && line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			return strings.Join(lines, "\n"), true
		}
	}
	return "", false
}

// decodeGroups reads an ingredient list. Entries that are sections (objects
// with items) are kept as groups; bare lines are collected into an unnamed
// group at the position where they first appear. Under the canonical key an
// object with a name and no line fields is an empty section, not a line.
func decodeGroups(value json.RawMessage, sections bool) ([]types.IngredientGroup, bool) {
	var entries []json.RawMessage
	if err := json.Unmarshal(value, &entries); err != nil {
		return nil, false
	}

	groups := make([]types.IngredientGroup, 0, len(entries))
	loose := -1
	for _, entry := range entries {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(entry, &obj); err == nil && obj != nil {
			if items := present(obj, groupItemKeys); len(items) > 0 {
				name, _ := firstString(obj, groupNameKeys)
				groups = append(groups, types.IngredientGroup{Name: name, Items: decodeLines(items[0])})
				loose = -1
				continue
			}
			if isEmptySection(obj, sections) {
				name, _ := firstString(obj, groupNameKeys)
				groups = append(groups, types.IngredientGroup{Name: name, Items: []types.IngredientLine{}})
				loose = -1
				continue
			}
		}

		line, ok := decodeLine(entry)
		if !ok {
			continue
		}
		if loose < 0 {
			groups = append(groups, types.IngredientGroup{Items: []types.IngredientLine{}})
			loose = len(groups) - 1
		}
		groups[loose].Items = append(groups[loose].Items, line)
	}
	return groups, true
}

// isEmptySection reports whether obj is a group whose items are missing. An
// explicit items key marks a section anywhere; a bare name only does so when
// the list is known to hold sections.
func isEmptySection(obj map[string]json.RawMessage, sections bool) bool {
	for _, key := range lineOnlyKeys {
		if _, ok := obj[key]; ok {
			return false
		}
	}
	for _, key := range groupItemKeys {
		if _, ok := obj[key]; ok {
			return true
		}
	}
	if !sections {
		return false
	}
	for _, key := range groupNameKeys {
		if _, ok := obj[key]; ok {
			return true
		}
	}
	return false
}

func decodeLines(value json.RawMessage) []types.IngredientLine {
	lines := []types.IngredientLine{}
	var entries []json.RawMessage
	if err := json.Unmarshal(value, &entries); err != nil {
		return lines
	}
	for _, entry := range entries {
		if line, ok := decodeLine(entry); ok {
			lines = append(lines, line)
		}
	}
	return lines
}

func decodeLine(value json.RawMessage) (types.IngredientLine, bool) {
	var text string
	if err := json.Unmarshal(value, &text); err == nil {
		if strings.TrimSpace(text) == "" {
			return types.IngredientLine{}, false
		}
		return types.IngredientLine{Name: text}, true
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(value, &obj); err != nil || obj == nil {
		return types.IngredientLine{}, false
	}
	line := types.IngredientLine{
		Quantity: quantityText(present(obj, lineQtyKeys)),
	}
	line.Name, _ = firstString(obj, lineNameKeys)
	if strings.TrimSpace(line.Quantity) == "" && strings.TrimSpace(line.Name) == "" {
		return types.IngredientLine{}, false
	}
	return line, true
}

// quantityText keeps quantities free-form; numbers keep their literal text
func quantityText(values []json.RawMessage) string {
	for _, value := range values {
		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			return s
		}
		var n json.Number
		if err := json.Unmarshal(value, &n); err == nil {
			return n.String()
		}
	}
	return ""
}

// decodeTags accepts a string array or a comma separated string and returns
// the distinct non-empty labels in first-seen order.
func decodeTags(value json.RawMessage) ([]string, bool) {
	var raw []string
	var list []json.RawMessage
	if err := json.Unmarshal(value, &list); err == nil {
		for _, item := range list {
			var tag string
			if err := json.Unmarshal(item, &tag); err == nil {
				raw = append(raw, tag)
			}
		}
	} else {
		var joined string
		if err := json.Unmarshal(value, &joined); err != nil {
			return nil, false
		}
		raw = strings.Split(joined, ",")
	}

	tags := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, tag := range raw {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags, true
}

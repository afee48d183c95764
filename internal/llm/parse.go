package llm

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrUnparsable is returned when the LLM response cannot be decoded
// as a JSON array by either recovery stage.
var ErrUnparsable = errors.New("unable to parse LLM response as JSON")

// arrayPattern matches the first JSON-array-of-objects shaped span in
// free text. Go's regexp is linear in the input, so scanning stays
// bounded even on pathological responses.
var arrayPattern = regexp.MustCompile(`(?s)\[\s*\{.*\}\s*\]`)

// ParseMisuseCases decodes an LLM response into a list of misuse-case
// objects. Two stages: a strict decode of the whole text, then a
// single pattern-based rescue of an embedded JSON array (providers
// sometimes wrap valid JSON in explanatory prose). No further rescue
// attempts are made.
//
// Elements decode as maps so fields beyond the required four survive
// untouched.
func ParseMisuseCases(raw string) ([]map[string]any, error) {
	raw = strings.TrimSpace(raw)

	var cases []map[string]any
	// JSON null decodes without error but is not an array.
	if err := json.Unmarshal([]byte(raw), &cases); err == nil && cases != nil {
		return cases, nil
	}

	match := arrayPattern.FindString(raw)
	if match == "" {
		return nil, ErrUnparsable
	}
	if err := json.Unmarshal([]byte(match), &cases); err != nil {
		return nil, ErrUnparsable
	}
	return cases, nil
}

package llm

import "fmt"

// RequiredFields are the fields every misuse case must carry in the
// response payload.
var RequiredFields = []string{"name", "description", "actor", "impact"}

// placeholderFormat fills a required field the model omitted.
const placeholderFormat = "Informasi %s tidak tersedia"

// Normalize ensures every misuse case has all required fields,
// inserting a placeholder naming the missing field. Elements are never
// dropped or reordered; fields beyond the required four pass through
// unchanged.
func Normalize(cases []map[string]any) []map[string]any {
	for i, mc := range cases {
		if mc == nil {
			mc = make(map[string]any, len(RequiredFields))
			cases[i] = mc
		}
		for _, field := range RequiredFields {
			if _, ok := mc[field]; !ok {
				mc[field] = fmt.Sprintf(placeholderFormat, field)
			}
		}
	}
	return cases
}

// internal/workers/ai-conversation/parse-user-intent/models.go
package parseuserintent

type Input struct {
	Utterance string `json:"utterance"`
	Question  string `json:"question,omitempty"`
}

type Output struct {
	Intent   string   `json:"intent"`
	Entities []Entity `json:"entities"`
}

// Entity matches the resolve-data-query input, e.g. {"entity":"collection","value":"leads"}.
type Entity struct {
	Entity string `json:"entity"`
	Value  string `json:"value"`
}

// DefaultIntent is reported when the model reply carries no usable intent.
const DefaultIntent = "search_database"

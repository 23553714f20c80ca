// internal/workers/ai-conversation/resolve-data-query/models.go
package resolvedataquery

type Input struct {
	Utterance string `json:"utterance"`
	// Question is accepted for process models that still use the older
	// variable name.
	Question string   `json:"question,omitempty"`
	Intent   string   `json:"intent,omitempty"`
	Entities []Entity `json:"entities,omitempty"`
}

type Entity struct {
	Entity string `json:"entity"`
	Value  string `json:"value"`
}

type Output struct {
	Reply         string                 `json:"reply"`
	Collection    string                 `json:"collection"`
	Filter        map[string]interface{} `json:"filter"`
	SynthesisPath string                 `json:"synthesisPath"`
	Mode          string                 `json:"mode"`
	Limit         int64                  `json:"limit"`
	ResultCount   int                    `json:"resultCount"`
	Outcome       string                 `json:"outcome"`
}

const inputSchema = `{
  "type": "object",
  "properties": {
    "utterance": {"type": "string"},
    "question": {"type": "string"},
    "intent": {"type": "string"},
    "entities": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "entity": {"type": "string"},
          "value": {"type": "string"}
        },
        "required": ["entity", "value"]
      }
    }
  },
  "anyOf": [
    {"required": ["utterance"]},
    {"required": ["question"]}
  ]
}`

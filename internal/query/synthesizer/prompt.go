package synthesizer

import (
	"encoding/json"
	"fmt"

	"homelead-workers/internal/models"
)

const promptTemplate = `
You are a MongoDB query generator. Convert the user question into a simple MongoDB query.

User Question: %q
Collection: %s
Available Fields: %s

SIMPLE RULES:
- For "total", "count", "all", "list all" → return {} (empty dictionary)
- For text searches → {"field": {"$regex": "text", "$options": "i"}}
- For exact matches → {"field": "value"}
- For numeric comparisons → {"field": {"$lte": value}}
- For multiple conditions → combine in one dictionary

EXAMPLES:
- "list all brokers" → {}
- "list all commercial properties" → {"propertyType": "Commercial"}
- "brokers in Mumbai" → {"address": {"$regex": "Mumbai", "$options": "i"}}
- "6%% commission" → {"commissionPercent": 6}
- "properties under 10 lakh" → {"maxBudget": {"$lte": 1000000}}
- "properties with less budget" → {"maxBudget": {"$lte": 1000000}}
- "properties with budget range 120000 - 1500000" → {"minBudget": {"$gte": 120000}, "maxBudget": {"$lte": 1500000}}
- "phone 9213434545" → {"phone": "9213434545"}
- "converted leads" → {"leadStatus": "Converted"}
- "ongoing leads" → {"leadStatus": "Ongoing"}
- "average budget" → {} (empty dict for aggregation)
- "all properties" → {}
- "all leads" → {}
- "lead no 38" → {"$or": [{"leadNo": 38}, {"id": 38}]}
- "show lead 38" → {"$or": [{"leadNo": 38}, {"id": 38}]}
- "property no 12" → {"$or": [{"propertyNo": 12}, {"id": 12}]}
- "show property 15" → {"$or": [{"propertyNo": 15}, {"id": 15}]}
- "broker no 5" → {"$or": [{"brokerNo": 5}, {"id": 5}]}
- "show broker 2" → {"$or": [{"brokerNo": 2}, {"id": 2}]}
- "project no 7" → {"$or": [{"projectNo": 7}, {"id": 7}]}
- "show project 8" → {"$or": [{"projectNo": 8}, {"id": 8}]}
- "land no 3" → {"$or": [{"landNo": 3}, {"id": 3}]}
- "show land 4" → {"$or": [{"landNo": 4}, {"id": 4}]}

IMPORTANT: Generate ONLY a valid JSON query dictionary. Do not include explanations, comments, or additional text. Just the JSON object.
`

// BuildPrompt renders the query-generation prompt for one utterance.
func BuildPrompt(utterance string, collection models.Collection, fields []string) string {
	fieldList, _ := json.Marshal(fields)
	return fmt.Sprintf(promptTemplate, utterance, collection, fieldList)
}

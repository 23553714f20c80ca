package synthesizer

import (
	"strings"
	"testing"

	"homelead-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt_KeepsEveryExample(t *testing.T) {
	prompt := BuildPrompt("brokers with 6% commission", models.CollectionBrokers, brokerFields)

	assert.NotContains(t, prompt, "%!")
	assert.Contains(t, prompt, `User Question: "brokers with 6% commission"`)
	assert.Contains(t, prompt, "Collection: brokers")
	assert.Contains(t, prompt, `Available Fields: ["name","phone","address","commissionPercent","brokerNo","id"]`)

	examples := []string{
		`- "list all brokers" → {}`,
		`- "brokers in Mumbai" → {"address": {"$regex": "Mumbai", "$options": "i"}}`,
		`- "6% commission" → {"commissionPercent": 6}`,
		`- "properties under 10 lakh" → {"maxBudget": {"$lte": 1000000}}`,
		`- "properties with budget range 120000 - 1500000" → {"minBudget": {"$gte": 120000}, "maxBudget": {"$lte": 1500000}}`,
		`- "lead no 38" → {"$or": [{"leadNo": 38}, {"id": 38}]}`,
		`- "show land 4" → {"$or": [{"landNo": 4}, {"id": 4}]}`,
	}
	for _, line := range examples {
		assert.Contains(t, prompt, line)
	}

	var count int
	for _, line := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(line, `- "`) {
			count++
		}
	}
	assert.Equal(t, 23, count)
}

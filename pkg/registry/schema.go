// pkg/registry/schema.go
package registry

// Registry is the set of collection profiles the classifier and validator
// work from.
type Registry struct {
	Version     string              `json:"version"`
	LastUpdated string              `json:"lastUpdated"`
	Collections []CollectionProfile `json:"collections"`
}

// CollectionProfile describes how to recognise a collection in free text and
// which fields a filter against it may reference.
type CollectionProfile struct {
	Name              string   `json:"name"`
	PrimaryKeywords   []string `json:"primaryKeywords"`
	SecondaryKeywords []string `json:"secondaryKeywords"`
	AllowedFields     []string `json:"allowedFields"`
	Weight            float64  `json:"weight,omitempty"`
}

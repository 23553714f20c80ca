// internal/models/collection.go
package models

import "strings"

// Collection names one category of real-estate record.
type Collection string

const (
	CollectionBrokers    Collection = "brokers"
	CollectionProperties Collection = "properties"
	CollectionProjects   Collection = "projects"
	CollectionLeads      Collection = "leads"
	CollectionLands      Collection = "lands"
)

// AllCollections lists every collection in classifier order.
var AllCollections = []Collection{
	CollectionProperties,
	CollectionProjects,
	CollectionBrokers,
	CollectionLeads,
	CollectionLands,
}

var singulars = map[Collection]string{
	CollectionBrokers:    "broker",
	CollectionProperties: "property",
	CollectionProjects:   "project",
	CollectionLeads:      "lead",
	CollectionLands:      "land",
}

// Singular returns "broker" for brokers, "property" for properties, etc.
func (c Collection) Singular() string {
	return singulars[c]
}

// RecordNumberField is the per-collection sequence field, e.g. leadNo.
func (c Collection) RecordNumberField() string {
	return c.Singular() + "No"
}

func (c Collection) Valid() bool {
	_, ok := singulars[c]
	return ok
}

// ParseCollection accepts a plural or singular collection name in any case.
func ParseCollection(s string) (Collection, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c := Collection(s); c.Valid() {
		return c, true
	}
	for c, singular := range singulars {
		if s == singular {
			return c, true
		}
	}
	return "", false
}

// Record is one document returned by the store.
type Record map[string]interface{}

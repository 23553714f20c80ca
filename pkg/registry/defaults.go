// pkg/registry/defaults.go
package registry

// Default returns the compiled-in profiles. Order is significant: it is the
// order the classifier scores collections in.
func Default() *Registry {
	return &Registry{
		Version:     "1.0.0",
		LastUpdated: "2025-01-15",
		Collections: []CollectionProfile{
			{
				Name:              "properties",
				PrimaryKeywords:   []string{"property", "properties", "flat", "apartment", "house", "shop", "unit"},
				SecondaryKeywords: []string{"commercial", "residential", "block", "floor", "bedroom", "bathroom", "budget", "price"},
				AllowedFields: []string{
					"propertyType", "blockName", "floorName", "series", "shopNo", "flatNo",
					"furnishedStatus", "minBudget", "maxBudget", "facing", "carpetArea",
					"noOfBedRooms", "noOfBathRooms", "propertyStatus", "propertyNo", "id",
				},
				Weight: 1.0,
			},
			{
				Name:              "projects",
				PrimaryKeywords:   []string{"project", "projects", "development", "society", "complex", "tower", "phase"},
				SecondaryKeywords: []string{"ready", "completed", "ongoing", "construction"},
				AllowedFields: []string{
					"name", "slug", "category", "projectStatus", "minBudget", "maxBudget",
					"address", "status", "projectNo", "id",
				},
				Weight: 1.0,
			},
			{
				Name:              "brokers",
				PrimaryKeywords:   []string{"broker", "brokers", "agent", "agents", "real estate", "commission"},
				SecondaryKeywords: []string{"horizon", "silverstone", "phone", "contact"},
				AllowedFields: []string{
					"name", "phone", "address", "commissionPercent", "yearStartedInRealEstate",
					"status", "brokerNo", "id",
				},
				Weight: 1.0,
			},
			{
				Name:              "leads",
				PrimaryKeywords:   []string{"lead", "leads", "customer", "buyer", "inquiry", "prospect"},
				SecondaryKeywords: []string{"converted", "source", "timeline"},
				AllowedFields: []string{
					"name", "phone", "email", "sourceType", "minBudget", "maxBudget",
					"buyingTimeline", "leadStatus", "leadNo", "id",
				},
				Weight: 1.0,
			},
			{
				Name:              "lands",
				PrimaryKeywords:   []string{"land", "plot", "acre", "gaj", "sq ft", "square feet"},
				SecondaryKeywords: []string{"vacant", "occupied", "agricultural"},
				AllowedFields: []string{
					"name", "propertyType", "address", "plotSize", "sizeType", "purchasePrice",
					"currentMarketValue", "occupancyStatus", "landNo", "id",
				},
				Weight: 1.0,
			},
		},
	}
}

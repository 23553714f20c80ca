package memory

import "homelead-workers/internal/models"

// SeedData returns a small demo data set covering every collection.
func SeedData() map[models.Collection][]models.Record {
	return map[models.Collection][]models.Record{
		models.CollectionBrokers: {
			{"id": int64(1), "brokerNo": int64(1), "name": "Horizon Group", "phone": "9820012345", "address": "Andheri West, Mumbai", "commissionPercent": int64(2), "yearStartedInRealEstate": int64(2009), "status": "Active"},
			{"id": int64(2), "brokerNo": int64(2), "name": "Silverstone Realty", "phone": "9822098765", "address": "Baner, Pune", "commissionPercent": int64(3), "yearStartedInRealEstate": int64(2014), "status": "Active"},
			{"id": int64(3), "brokerNo": int64(3), "name": "Monil Estates", "phone": "9898011122", "address": "Satellite, Ahmedabad", "commissionPercent": int64(2), "yearStartedInRealEstate": int64(2017), "status": "Inactive"},
			{"id": int64(4), "brokerNo": int64(4), "name": "Coastal Homes", "phone": "9833344455", "address": "Powai, Mumbai", "commissionPercent": int64(1), "yearStartedInRealEstate": int64(2020), "status": "Active"},
			{"id": int64(5), "brokerNo": int64(5), "name": "Capital Brokers", "phone": "9811122233", "address": "Dwarka, Delhi", "commissionPercent": int64(4), "yearStartedInRealEstate": int64(2011), "status": "Active"},
		},
		models.CollectionProperties: {
			{"id": int64(1), "propertyNo": int64(1), "propertyType": "Flat", "blockName": "A", "floorName": "3rd Floor", "flatNo": "A-302", "furnishedStatus": "Semi Furnished", "minBudget": int64(650000), "maxBudget": int64(900000), "facing": "East", "carpetArea": int64(540), "carpetAreaType": "sq ft", "noOfBedRooms": int64(1), "noOfBathRooms": int64(1), "propertyStatus": "Available"},
			{"id": int64(2), "propertyNo": int64(2), "propertyType": "Flat", "blockName": "B", "floorName": "7th Floor", "flatNo": "B-704", "furnishedStatus": "Furnished", "minBudget": int64(4500000), "maxBudget": int64(5200000), "facing": "North", "carpetArea": int64(1050), "carpetAreaType": "sq ft", "noOfBedRooms": int64(2), "noOfBathRooms": int64(2), "propertyStatus": "Sold"},
			{"id": int64(3), "propertyNo": int64(3), "propertyType": "Shop", "blockName": "C", "floorName": "Ground Floor", "shopNo": "G-12", "furnishedStatus": "Unfurnished", "minBudget": int64(800000), "maxBudget": int64(1000000), "facing": "West", "carpetArea": int64(300), "carpetAreaType": "sq ft", "propertyStatus": "Available"},
			{"id": int64(4), "propertyNo": int64(4), "propertyType": "Flat", "blockName": "A", "floorName": "11th Floor", "flatNo": "A-1103", "furnishedStatus": "Unfurnished", "minBudget": int64(12000000), "maxBudget": int64(15000000), "facing": "South", "carpetArea": int64(1800), "carpetAreaType": "sq ft", "noOfBedRooms": int64(3), "noOfBathRooms": int64(3), "propertyStatus": "Booked"},
		},
		models.CollectionProjects: {
			{"id": int64(1), "projectNo": int64(1), "name": "Horizon Heights", "slug": "horizon-heights", "category": "Residential", "projectStatus": "Ongoing", "minBudget": int64(4500000), "maxBudget": int64(9000000), "address": "Thane, Mumbai", "status": "Active"},
			{"id": int64(2), "projectNo": int64(2), "name": "Silverstone Business Park", "slug": "silverstone-business-park", "category": "Commercial", "projectStatus": "Completed", "minBudget": int64(8000000), "maxBudget": int64(25000000), "address": "Hinjewadi, Pune", "status": "Active"},
			{"id": int64(3), "projectNo": int64(3), "name": "Green Meadows", "slug": "green-meadows", "category": "Residential", "projectStatus": "Upcoming", "minBudget": int64(3000000), "maxBudget": int64(6000000), "address": "Sarjapur, Bangalore", "status": "Active"},
		},
		models.CollectionLeads: {
			{"id": int64(36), "leadNo": int64(36), "name": "Amit Shah", "phone": "9988776655", "email": "amit.shah@example.com", "sourceType": "Website", "minBudget": int64(1500000), "maxBudget": int64(2500000), "buyingTimeline": "3 months", "leadStatus": "Open"},
			{"id": int64(37), "leadNo": int64(37), "name": "Priya Nair", "phone": "9876501234", "email": "priya.nair@example.com", "sourceType": "Referral", "minBudget": int64(5000000), "maxBudget": int64(8000000), "buyingTimeline": "6 months", "leadStatus": "Converted"},
			{"id": int64(38), "leadNo": int64(38), "name": "Rahul Verma", "phone": "9123456780", "email": "rahul.verma@example.com", "sourceType": "Walk-in", "minBudget": int64(2000000), "maxBudget": int64(3500000), "buyingTimeline": "1 month", "leadStatus": "Open"},
			{"id": int64(39), "leadNo": int64(39), "name": "Sneha Kulkarni", "phone": "9000011122", "email": "sneha.k@example.com", "sourceType": "Broker", "minBudget": int64(9000000), "maxBudget": int64(12000000), "buyingTimeline": "12 months", "leadStatus": "Lost"},
		},
		models.CollectionLands: {
			{"id": int64(1), "landNo": int64(1), "name": "Green Acres", "propertyType": "Agricultural", "address": "Nashik", "plotSize": int64(5), "sizeType": "acre", "purchasePrice": int64(7500000), "currentMarketValue": int64(12000000), "occupancyStatus": "Vacant"},
			{"id": int64(2), "landNo": int64(2), "name": "Riverside Plot", "propertyType": "Residential", "address": "Lonavala, Pune", "plotSize": int64(400), "sizeType": "gaj", "purchasePrice": int64(3200000), "currentMarketValue": int64(4100000), "occupancyStatus": "Occupied"},
		},
	}
}

package validators

import "go.mongodb.org/mongo-driver/bson"

var LabValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"lab_name",
			"lab_type",
			"max_capacity",
			"allocated_TO",
			"bookings",
			"version",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"lab_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"lab_type": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 50,
			},

			"max_capacity": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  1000,
			},

			"allocated_TO": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"version": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"bookings": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"_id", "bookBy", "date", "duration", "status"},
					"properties": bson.M{
						"_id":    bson.M{"bsonType": "string"},
						"bookBy": bson.M{"bsonType": "string"},
						"date":   bson.M{"bsonType": "date"},
						"duration": bson.M{
							"bsonType": "object",
							"required": []string{"from", "to"},
							"properties": bson.M{
								"from": bson.M{"bsonType": "string", "pattern": "^([01][0-9]|2[0-3]):[0-5][0-9]$"},
								"to":   bson.M{"bsonType": "string", "pattern": "^([01][0-9]|2[0-3]):[0-5][0-9]$"},
							},
						},
						"status": bson.M{
							"enum": statusEnum(),
						},
					},
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

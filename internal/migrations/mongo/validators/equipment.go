package validators

import "go.mongodb.org/mongo-driver/bson"

var EquipmentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"item_num",
			"name",
			"quantity",
			"borrowings",
			"version",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"item_num": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 50,
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"quantity": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"img_url": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"version": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"borrowings": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"_id", "borrowed_by", "num_of_items", "borrow_date", "status"},
					"properties": bson.M{
						"_id":          bson.M{"bsonType": "string"},
						"borrowed_by":  bson.M{"bsonType": "string"},
						"num_of_items": bson.M{"bsonType": []string{"int", "long"}, "minimum": 1},
						"borrow_date":  bson.M{"bsonType": "date"},
						"return_date":  bson.M{"bsonType": "date"},
						"isNew":        bson.M{"bsonType": "bool"},
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

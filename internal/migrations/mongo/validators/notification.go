package validators

import "go.mongodb.org/mongo-driver/bson"

var NotificationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"title",
			"msg",
			"to",
			"date",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"title": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"msg": bson.M{
				"bsonType": "string",
			},

			"to": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"user", "seen"},
					"properties": bson.M{
						"user": bson.M{"bsonType": []string{"objectId", "string"}},
						"seen": bson.M{"bsonType": "bool"},
					},
				},
			},

			"date": bson.M{
				"bsonType": "date",
			},
		},
	},
}

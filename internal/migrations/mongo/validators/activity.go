package validators

import "go.mongodb.org/mongo-driver/bson"

var ActivityValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"day",
			"capacity",
			"allowed_grades",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 150,
			},

			"day": bson.M{
				"bsonType": "string",
				"enum": []string{
					"Monday",
					"Tuesday",
					"Wednesday",
					"Thursday",
					"Friday",
					"Saturday",
					"Sunday",
				},
			},

			// Zero means unlimited seats.
			"capacity": bson.M{
				"bsonType": "int",
				"minimum":  0,
				"maximum":  1000,
			},

			"allowed_grades": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items": bson.M{
					"bsonType":  "string",
					"minLength": 24,
					"maxLength": 24,
				},
			},

			"instructor": bson.M{
				"bsonType":  "string",
				"maxLength": 150,
			},

			"venue": bson.M{
				"bsonType":  "string",
				"maxLength": 150,
			},

			"time": bson.M{
				"bsonType":  "string",
				"maxLength": 50,
			},
		},
	},
}

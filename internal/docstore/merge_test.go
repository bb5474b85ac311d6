package docstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestConjoin(t *testing.T) {
	rate1 := bson.M{"rate": bson.M{"$eq": 1}}
	rate2 := bson.M{"rate": bson.M{"$eq": 2}}
	name := bson.M{"name": bson.M{"$eq": "Demons"}}

	tests := []struct {
		name     string
		filters  []bson.M
		expected bson.M
	}{
		{"Nothing", nil, nil},
		{"Only empty", []bson.M{{}, nil}, nil},
		{"Single", []bson.M{rate1}, rate1},
		{"Disjoint keys merge", []bson.M{rate1, name}, bson.M{"rate": bson.M{"$eq": 1}, "name": bson.M{"$eq": "Demons"}}},
		{"Colliding keys promote", []bson.M{rate1, rate2}, bson.M{"$and": bson.A{rate1, rate2}}},
		{
			"Existing conjunctions are flattened",
			[]bson.M{{"$and": bson.A{rate1, name}}, rate2},
			bson.M{"$and": bson.A{rate1, name, rate2}},
		},
		{
			"Disjunctions stay intact",
			[]bson.M{{"$or": bson.A{rate1, rate2}}, {"$or": bson.A{name}}},
			bson.M{"$and": bson.A{bson.M{"$or": bson.A{rate1, rate2}}, bson.M{"$or": bson.A{name}}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Conjoin(tt.filters...))
		})
	}
}

func TestPrefixFields(t *testing.T) {
	filter := bson.M{
		"$and": bson.A{
			bson.M{"rate": bson.M{"$gte": 5}},
			bson.M{"$or": bson.A{
				bson.M{"deleted": nil},
				bson.M{"deleted": bson.M{"$exists": false}},
			}},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$start", bson.M{"$literal": "$end"}}}},
		},
	}

	expected := bson.M{
		"$and": bson.A{
			bson.M{"owner.rate": bson.M{"$gte": 5}},
			bson.M{"$or": bson.A{
				bson.M{"owner.deleted": nil},
				bson.M{"owner.deleted": bson.M{"$exists": false}},
			}},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$owner.start", bson.M{"$literal": "$end"}}}},
		},
	}

	assert.Equal(t, expected, PrefixFields(filter, "owner"))
	assert.Equal(t, expected, PrefixFields(filter, "owner."))
	assert.Equal(t, filter, PrefixFields(filter, ""))
}

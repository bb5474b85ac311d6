package merge

import (
	"go.mongodb.org/mongo-driver/v2/bson"
	"gorm.io/gorm/clause"

	"github.com/nlstn/go-filterql/internal/compile"
	"github.com/nlstn/go-filterql/internal/docstore"
	"github.com/nlstn/go-filterql/internal/relational"
	"github.com/nlstn/go-filterql/internal/search"
)

// Document merges into MongoDB query documents.
var Document = Target[bson.M]{
	Backend:      compile.DocumentBackend,
	Compile:      docstore.Compile,
	Conjoin:      docstore.Conjoin,
	PrefixFields: docstore.PrefixFields,
	IsEmpty:      func(f bson.M) bool { return len(f) == 0 },
}

// Search merges into Elasticsearch queries.
var Search = Target[*search.Query]{
	Backend:      compile.SearchBackend,
	Compile:      search.Compile,
	Conjoin:      search.Conjoin,
	PrefixFields: search.PrefixFields,
	IsEmpty:      search.IsEmpty,
}

// Relational merges into GORM conditions.
var Relational = Target[clause.Expression]{
	Backend:      compile.RelationalBackend,
	Compile:      relational.Compile,
	Conjoin:      relational.Conjoin,
	PrefixFields: relational.PrefixFields,
	IsEmpty:      func(e clause.Expression) bool { return e == nil },
}

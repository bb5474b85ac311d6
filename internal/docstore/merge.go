package docstore

import (
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Conjoin combines documents so that all of them must match. Empty documents
// are dropped. Existing $and containers are flattened into the result; if no
// input is a $and container and no two inputs share a top-level key, the
// documents are merged into one, otherwise they are listed under $and.
func Conjoin(filters ...bson.M) bson.M {
	var parts []bson.M
	container := false
	for _, f := range filters {
		if len(f) == 0 {
			continue
		}
		if items, ok := andItems(f); ok {
			container = true
			parts = append(parts, items...)
			continue
		}
		parts = append(parts, f)
	}

	switch len(parts) {
	case 0:
		return nil
	case 1:
		if !container {
			return parts[0]
		}
	}

	if !container {
		merged := bson.M{}
		collision := false
		for _, p := range parts {
			for k, v := range p {
				if _, exists := merged[k]; exists {
					collision = true
					break
				}
				merged[k] = v
			}
			if collision {
				break
			}
		}
		if !collision {
			return merged
		}
	}

	items := make(bson.A, len(parts))
	for i, p := range parts {
		items[i] = p
	}
	return bson.M{"$and": items}
}

// andItems returns the operands of a document whose only key is $and.
func andItems(f bson.M) ([]bson.M, bool) {
	if len(f) != 1 {
		return nil, false
	}
	raw, ok := f["$and"]
	if !ok {
		return nil, false
	}
	var list []any
	switch v := raw.(type) {
	case bson.A:
		list = v
	case []any:
		list = v
	default:
		return nil, false
	}
	items := make([]bson.M, 0, len(list))
	for _, item := range list {
		doc, ok := asDocument(item)
		if !ok {
			return nil, false
		}
		items = append(items, doc)
	}
	return items, true
}

func asDocument(v any) (bson.M, bool) {
	switch d := v.(type) {
	case bson.M:
		return d, true
	case map[string]any:
		return bson.M(d), true
	}
	return nil, false
}

// PrefixFields returns a copy of filter with every field path placed under
// prefix. Operator keys are kept, logical operators are descended into and
// field references inside $expr are rewritten.
func PrefixFields(filter bson.M, prefix string) bson.M {
	if filter == nil || prefix == "" {
		return filter
	}
	prefix = strings.TrimSuffix(prefix, ".") + "."
	return prefixDocument(filter, prefix)
}

func prefixDocument(doc bson.M, prefix string) bson.M {
	out := make(bson.M, len(doc))
	for k, v := range doc {
		switch {
		case k == "$and" || k == "$or" || k == "$nor":
			out[k] = prefixList(v, prefix)
		case k == "$expr":
			out[k] = prefixReferences(v, prefix)
		case strings.HasPrefix(k, "$"):
			out[k] = v
		default:
			out[prefix+k] = v
		}
	}
	return out
}

func prefixList(v any, prefix string) any {
	var list []any
	switch l := v.(type) {
	case bson.A:
		list = l
	case []any:
		list = l
	default:
		return v
	}
	out := make(bson.A, len(list))
	for i, item := range list {
		if doc, ok := asDocument(item); ok {
			out[i] = prefixDocument(doc, prefix)
			continue
		}
		out[i] = item
	}
	return out
}

// prefixReferences rewrites $path strings in an aggregation expression.
// $$variables and $literal operands are left alone.
func prefixReferences(v any, prefix string) any {
	switch x := v.(type) {
	case string:
		if strings.HasPrefix(x, "$") && !strings.HasPrefix(x, "$$") {
			return "$" + prefix + x[1:]
		}
		return x
	case bson.M:
		out := make(bson.M, len(x))
		for k, item := range x {
			if k == "$literal" {
				out[k] = item
				continue
			}
			out[k] = prefixReferences(item, prefix)
		}
		return out
	case map[string]any:
		return prefixReferences(bson.M(x), prefix)
	case bson.A:
		out := make(bson.A, len(x))
		for i, item := range x {
			out[i] = prefixReferences(item, prefix)
		}
		return out
	case []any:
		return prefixReferences(bson.A(x), prefix)
	}
	return v
}

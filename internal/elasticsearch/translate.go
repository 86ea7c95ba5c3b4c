package elasticsearch

import (
	"fmt"
	"strings"

	"github.com/DeafMist/legal-radar/internal/query"
	"github.com/DeafMist/legal-radar/internal/store"
)

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

// translate turns a predicate into query DSL.
func translate(p query.Predicate) (map[string]any, error) {
	switch v := query.Simplify(p).(type) {
	case query.All:
		return map[string]any{"match_all": map[string]any{}}, nil

	case query.And:
		clauses, err := translateAll(v)
		if err != nil {
			return nil, err
		}
		return map[string]any{"bool": map[string]any{"filter": clauses}}, nil

	case query.Or:
		if len(v) == 0 {
			return map[string]any{"match_none": map[string]any{}}, nil
		}
		clauses, err := translateAll(v)
		if err != nil {
			return nil, err
		}
		return should(clauses), nil

	case query.Contains:
		pattern := "*" + wildcardEscaper.Replace(v.Value) + "*"
		clauses := make([]map[string]any, 0, len(v.Fields))
		for _, field := range v.Fields {
			clauses = append(clauses, map[string]any{
				"wildcard": map[string]any{
					field: map[string]any{
						"value":            pattern,
						"case_insensitive": true,
					},
				},
			})
		}
		return should(clauses), nil

	case query.Equals:
		if v.Value == nil {
			return mustNotExist(v.Field), nil
		}
		return map[string]any{"term": map[string]any{v.Field: v.Value}}, nil

	case query.In:
		return map[string]any{"terms": map[string]any{v.Field: v.Values}}, nil

	case query.IDIs:
		return map[string]any{"ids": map[string]any{"values": []string{string(v.ID)}}}, nil

	case query.DateRange:
		resolved := whenField(v.Field.Canonical())
		bounds := map[string]any{}
		if v.Range.Start != nil {
			bounds["gte"] = v.Range.Start.UnixMilli()
		}
		if v.Range.End != nil {
			bounds["lte"] = v.Range.End.UnixMilli()
		}
		// Documents without a parsed date stay in the result.
		return should([]map[string]any{
			{"range": map[string]any{resolved: bounds}},
			mustNotExist(resolved),
		}), nil
	}
	return nil, fmt.Errorf("unsupported predicate %T", p)
}

func translateAll(preds []query.Predicate) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(preds))
	for _, p := range preds {
		clause, err := translate(p)
		if err != nil {
			return nil, err
		}
		out = append(out, clause)
	}
	return out, nil
}

func should(clauses []map[string]any) map[string]any {
	return map[string]any{
		"bool": map[string]any{
			"should":               clauses,
			"minimum_should_match": 1,
		},
	}
}

func mustNotExist(field string) map[string]any {
	return map[string]any{
		"bool": map[string]any{
			"must_not": []map[string]any{
				{"exists": map[string]any{"field": field}},
			},
		},
	}
}

// translateSort maps sort keys onto DSL. Native dates sort on their resolved
// runtime field with missing values at the epoch.
func translateSort(keys []store.SortKey) []map[string]any {
	out := make([]map[string]any, 0, len(keys))
	for _, key := range keys {
		order := "asc"
		if key.Desc {
			order = "desc"
		}
		switch key.Kind {
		case store.SortTime:
			missing := "_first"
			if key.Desc {
				missing = "_last"
			}
			out = append(out, map[string]any{
				key.Field.Canonical(): map[string]any{
					"order":         order,
					"missing":       missing,
					"unmapped_type": "date",
				},
			})
		default:
			out = append(out, map[string]any{
				whenField(key.Field.Canonical()): map[string]any{
					"order":         order,
					"missing":       0,
					"unmapped_type": "long",
				},
			})
		}
	}
	return out
}

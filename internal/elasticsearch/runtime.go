package elasticsearch

import (
	"github.com/DeafMist/legal-radar/internal/models"
	"github.com/DeafMist/legal-radar/internal/query"
	"github.com/DeafMist/legal-radar/internal/store"
)

// dateScript emits the epoch milliseconds of a native date. A stamped
// <field>_ms wins; a document stamped <field>_checked without it has no
// date; anything not yet stamped has its native string parsed in place.
// The accepted encodings follow internal/dates.
const dateScript = `
if (doc.containsKey(params.millis) && doc[params.millis].size() > 0) {
  emit(doc[params.millis].value);
  return;
}
if (doc.containsKey(params.checked) && doc[params.checked].size() > 0) {
  return;
}
for (String f : params.fields) {
  if (!doc.containsKey(f) || doc[f].size() == 0) {
    continue;
  }
  String raw = doc[f].value;
  raw = raw.trim();
  if (raw.isEmpty()) {
    continue;
  }
  boolean digits = true;
  for (int i = 0; i < raw.length(); ++i) {
    if (!Character.isDigit(raw.charAt(i))) {
      digits = false;
      break;
    }
  }
  if (digits && raw.length() > 8) {
    emit(Long.parseLong(raw));
    return;
  }
  try {
    emit(ZonedDateTime.parse(raw).toInstant().toEpochMilli());
    return;
  } catch (Exception e) {}
  try {
    emit(LocalDateTime.parse(raw.replace(" ", "T")).toInstant(ZoneOffset.UTC).toEpochMilli());
    return;
  } catch (Exception e) {}
  try {
    emit(LocalDate.parse(raw).atStartOfDay(ZoneOffset.UTC).toInstant().toEpochMilli());
    return;
  } catch (Exception e) {}
  String day = raw;
  int space = raw.indexOf(" ");
  if (space > 0) {
    day = raw.substring(0, space);
  }
  for (String sep : params.separators) {
    String[] parts = day.splitOnToken(sep);
    if (parts.length == 3) {
      try {
        emit(LocalDate.of(Integer.parseInt(parts[2]), Integer.parseInt(parts[1]), Integer.parseInt(parts[0])).atStartOfDay(ZoneOffset.UTC).toInstant().toEpochMilli());
        return;
      } catch (Exception e) {}
    }
  }
  return;
}
`

// whenField names the runtime field carrying the resolved date of canonical.
func whenField(canonical string) string { return canonical + "_when" }

func dateRuntimeField(f query.Field) map[string]any {
	canonical := f.Canonical()
	return map[string]any{
		"type": "long",
		"script": map[string]any{
			"source": dateScript,
			"params": map[string]any{
				"millis":     models.MillisField(canonical),
				"checked":    models.CheckedField(canonical),
				"fields":     []string(f),
				"separators": []string{".", "/"},
			},
		},
	}
}

// runtimeMappings collects the date fields a filter and sort refer to.
func runtimeMappings(p query.Predicate, keys []store.SortKey) map[string]any {
	out := map[string]any{}

	var walk func(query.Predicate)
	walk = func(p query.Predicate) {
		switch v := query.Simplify(p).(type) {
		case query.And:
			for _, clause := range v {
				walk(clause)
			}
		case query.Or:
			for _, clause := range v {
				walk(clause)
			}
		case query.DateRange:
			out[whenField(v.Field.Canonical())] = dateRuntimeField(v.Field)
		}
	}
	walk(p)

	for _, key := range keys {
		if key.Kind == store.SortDate {
			out[whenField(key.Field.Canonical())] = dateRuntimeField(key.Field)
		}
	}
	return out
}

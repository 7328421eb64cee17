package ir

// Select resolves a field path against a descriptor and returns one entry
// per reachable leaf. A nil entry means "no field with that name at this
// level" and is the expected, recoverable outcome for an unresolved path
// segment.
//
// The empty path behaves asymmetrically on purpose. On a non-record
// descriptor it yields the descriptor itself. On a record-shaped descriptor
// it yields Select of the empty path over every field, concatenated: "empty
// path on a record" means every addressable leaf under the record, not the
// record itself. This supports callers that want all leaves without naming
// each field.
//
// A non-empty path descends into the field named by its head. Only
// record-shaped variants carry fields, so a non-empty path against any
// other variant yields the single-entry nil result.
func Select(d Descriptor, path []string) []Descriptor {
	fields, isRecord := RecordFields(d)

	if len(path) == 0 {
		if !isRecord {
			return []Descriptor{d}
		}
		var out []Descriptor
		for _, f := range fields {
			out = append(out, Select(f.Desc, nil)...)
		}
		return out
	}

	if isRecord {
		for _, f := range fields {
			if f.Name == path[0] {
				return Select(f.Desc, path[1:])
			}
		}
	}
	return []Descriptor{nil}
}

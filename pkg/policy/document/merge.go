package document

// Merge deep-merges sources left to right into a new document.
//
// Objects are merged key by key. When both sides hold a list the lists are
// concatenated; any other collision is won by the later source. Keys keep the
// position of their first appearance. Inputs are never modified.
func Merge(sources ...*Object) *Object {
	out := New()
	for _, src := range sources {
		if src == nil {
			continue
		}
		mergeInto(out, src)
	}
	return out
}

func mergeInto(dst, src *Object) {
	for pair := src.Oldest(); pair != nil; pair = pair.Next() {
		existing, ok := dst.Get(pair.Key)
		if !ok {
			dst.Set(pair.Key, clone(pair.Value))
			continue
		}
		dst.Set(pair.Key, mergeValue(existing, pair.Value))
	}
}

func mergeValue(dst, src any) any {
	switch s := src.(type) {
	case *Object:
		if d, ok := dst.(*Object); ok {
			// dst is already a private copy owned by the merge result.
			mergeInto(d, s)
			return d
		}
	case []any:
		if d, ok := dst.([]any); ok {
			out := make([]any, 0, len(d)+len(s))
			out = append(out, d...)
			for _, v := range s {
				out = append(out, clone(v))
			}
			return out
		}
	}
	return clone(src)
}

func clone(v any) any {
	switch t := v.(type) {
	case *Object:
		out := New()
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			out.Set(pair.Key, clone(pair.Value))
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = clone(t[i])
		}
		return out
	default:
		return v
	}
}

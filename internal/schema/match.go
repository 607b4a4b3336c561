package schema

// MatchKind classifies how an input schema relates to a candidate output
// schema for binding purposes (§4.3.1).
type MatchKind int

const (
	Mismatch MatchKind = iota
	Peer
	Deref
	Composite
)

func (m MatchKind) String() string {
	switch m {
	case Peer:
		return "Peer"
	case Deref:
		return "Deref"
	case Composite:
		return "Composite"
	default:
		return "Mismatch"
	}
}

// Match computes the schema-match relationship between an input schema and
// a candidate output schema, per §4.3.1:
//
//   - Peer if schemas are pointer-equal after interning.
//   - Deref if output is Ref[inner] and Match(input, inner) isn't Mismatch.
//   - Composite if schemas share kind and arity, at least one child match
//     is Deref or Composite, and no child match is Mismatch.
//   - Mismatch otherwise.
func Match(input, output *TSSchema) MatchKind {
	if input == output {
		return Peer
	}
	if output.Kind == KindRef {
		if Match(input, output.Inner) != Mismatch {
			return Deref
		}
	}
	if input.Kind != output.Kind {
		return Mismatch
	}
	switch input.Kind {
	case KindBundle:
		if len(input.Fields) != len(output.Fields) {
			return Mismatch
		}
		anyNonPeer := false
		for i := range input.Fields {
			if input.FieldNames[i] != output.FieldNames[i] {
				return Mismatch
			}
			m := Match(input.Fields[i], output.Fields[i])
			if m == Mismatch {
				return Mismatch
			}
			if m != Peer {
				anyNonPeer = true
			}
		}
		if anyNonPeer {
			return Composite
		}
		return Peer
	case KindList:
		if input.N != output.N {
			return Mismatch
		}
		m := Match(input.Elem, output.Elem)
		if m == Mismatch {
			return Mismatch
		}
		if m != Peer {
			return Composite
		}
		return Peer
	case KindDynamicList:
		m := Match(input.Elem, output.Elem)
		if m == Mismatch {
			return Mismatch
		}
		if m != Peer {
			return Composite
		}
		return Peer
	case KindSet:
		// Set/Map/Window composites with Ref elements are flagged Composite
		// but treated atomically for the edge itself (§4.3.1).
		if input.Elem != output.Elem {
			if Match(input.Elem, output.Elem) == Mismatch {
				return Mismatch
			}
			return Composite
		}
		return Peer
	case KindMap:
		if input.KeySchema != output.KeySchema {
			return Mismatch
		}
		m := Match(input.ValueSchema, output.ValueSchema)
		if m == Mismatch {
			return Mismatch
		}
		if m != Peer {
			return Composite
		}
		return Peer
	case KindWindow:
		if input.WindowIsCounted != output.WindowIsCounted ||
			input.WindowCapacity != output.WindowCapacity ||
			input.WindowDuration != output.WindowDuration {
			return Mismatch
		}
		if input.Elem != output.Elem {
			return Mismatch
		}
		return Peer
	case KindRef:
		if Match(input.Inner, output.Inner) == Mismatch {
			return Mismatch
		}
		return Composite
	case KindScalar:
		if input.ScalarType == output.ScalarType {
			return Peer
		}
		return Mismatch
	default:
		return Mismatch
	}
}

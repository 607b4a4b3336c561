// Package binding wires node inputs to node outputs according to the
// schema-match rules (C4 in SPEC_FULL.md, spec §4.3).
package binding

import (
	"tsengine/internal/engineerr"
	"tsengine/internal/overlay"
	"tsengine/internal/schema"
	"tsengine/internal/tsvalue"
)

// Bind wires input to output per §4.3.1/§4.3.2. observer, when non-nil, is
// subscribed at whichever overlay ends up as the authoritative source —
// pass the consuming node (or nil for an inactive input; see Activate).
func Bind(input *tsvalue.TSInput, output *tsvalue.TSOutput, observer overlay.Observer) error {
	Unbind(input)
	return bindView(input, output.View, output, observer)
}

// bindView performs one level of match+bind against a source view. srcOut
// is non-nil only when src is itself a genuine node output (as opposed to
// a composite field view borrowed from one); it is threaded through so a
// direct Peer at any nesting level can still record the resolved output
// identity.
func bindView(input *tsvalue.TSInput, src tsvalue.View, srcOut *tsvalue.TSOutput, observer overlay.Observer) error {
	m := schema.Match(input.Schema, src.Schema)
	switch m {
	case schema.Peer:
		bindPeer(input, src, srcOut, observer)
		return nil
	case schema.Deref:
		bindDeref(input, src, observer)
		return nil
	case schema.Composite:
		return bindComposite(input, src, observer)
	default:
		return &engineerr.BindingError{Input: input.Name, Reason: "schema mismatch"}
	}
}

func bindPeer(input *tsvalue.TSInput, src tsvalue.View, srcOut *tsvalue.TSOutput, observer overlay.Observer) {
	input.View = src
	input.Kind = tsvalue.LinkPeer
	input.Output = srcOut
	if observer != nil {
		input.View.Ovl.Subscribe(observer)
		input.SetObserver(observer)
	}
}

// bindComposite recurses into Bundle/fixed-List children independently;
// peered children become Peers, Ref'd children become Derefs, and the
// container keeps its own local storage/overlay to aggregate child
// modifications (§4.3.2 step 4). Set/Map/Window composites with Ref
// elements are bound atomically at the container edge (§4.3.1): the node
// itself recomputes per-tick deltas with compute_set_delta/compute_dict_delta
// rather than the binding layer tracking per-element links.
func bindComposite(input *tsvalue.TSInput, src tsvalue.View, observer overlay.Observer) error {
	input.Kind = tsvalue.LinkComposite
	switch input.Schema.Kind {
	case schema.KindBundle:
		input.Children = make([]*tsvalue.TSInput, len(input.Schema.Fields))
		for i := range input.Schema.Fields {
			child := tsvalue.NewChildInput(input.Owner, input.Name, input.View.Field(i))
			if err := bindView(child, src.Field(i), nil, observer); err != nil {
				return err
			}
			input.Children[i] = child
		}
	case schema.KindList:
		input.Children = make([]*tsvalue.TSInput, input.Schema.N)
		for i := 0; i < input.Schema.N; i++ {
			child := tsvalue.NewChildInput(input.Owner, input.Name, input.View.Field(i))
			if err := bindView(child, src.Field(i), nil, observer); err != nil {
				return err
			}
			input.Children[i] = child
		}
	default:
		// DynamicList / Set / Map / Window: whole-container binding, own
		// storage stays local; the node reads the source output directly
		// each tick and diffs via compute_set_delta/compute_dict_delta.
		if observer != nil {
			src.Ovl.Subscribe(observer)
			input.SetAtomicSource(src.Ovl, observer)
		}
	}
	return nil
}

// Unbind reverses whatever bind state input currently holds, releasing
// references transitively (children first), and leaves the input in the
// LinkUnbound state with its own private storage (§4.3.2 "Unbind reverses
// step 2/3/4 and re-subscribes to no one").
func Unbind(input *tsvalue.TSInput) {
	switch input.Kind {
	case tsvalue.LinkPeer:
		if obs, ok := input.Observer(); ok {
			input.View.Ovl.Unsubscribe(obs)
		}
		input.View = tsvalue.NewView(input.Schema, overlay.NewArena(1))
	case tsvalue.LinkDeref:
		if input.Link != nil {
			input.Link.Release()
			input.Link = nil
		}
		input.View = tsvalue.NewView(input.Schema, overlay.NewArena(1))
	case tsvalue.LinkComposite:
		for _, c := range input.Children {
			Unbind(c)
		}
		input.Children = nil
		if src, obs, ok := input.AtomicSource(); ok {
			src.Unsubscribe(obs)
		}
	}
	input.Kind = tsvalue.LinkUnbound
	input.Output = nil
}

// Activate subscribes observer to an already-bound input's authoritative
// overlay, used when an input transitions into active_inputs after bind
// (§4.4.2 "make each input listed in active_inputs active").
func Activate(input *tsvalue.TSInput, observer overlay.Observer) {
	switch input.Kind {
	case tsvalue.LinkPeer:
		input.View.Ovl.Subscribe(observer)
		input.SetObserver(observer)
	case tsvalue.LinkDeref:
		if input.Link != nil {
			input.Link.Activate(observer)
		}
	case tsvalue.LinkComposite:
		for _, c := range input.Children {
			Activate(c, observer)
		}
	}
}

package tsvalue

import (
	"tsengine/internal/overlay"
	"tsengine/internal/schema"
)

// LinkKind records how an input is currently wired, mirroring the
// schema.MatchKind that produced it (§4.3.1, §4.3.2).
type LinkKind int

const (
	// LinkUnbound: no output has been bound; the input reads its own
	// private (always-invalid, never-written) View.
	LinkUnbound LinkKind = iota
	// LinkPeer: input's View IS the bound output's View (same storage,
	// same overlay node) — no copying, no per-tick work.
	LinkPeer
	// LinkDeref: input reads through a bound Ref, following Target
	// transitively until it reaches a non-Ref output or goes empty.
	LinkDeref
	// LinkComposite: input's children are bound independently, each with
	// its own LinkKind; the input's own View stays local except where a
	// child peer link reaches all the way up (§4.3.1 composite rule).
	LinkComposite
)

// TSInput is the input-side counterpart to TSOutput: a View plus the
// bookkeeping the binding package needs to drive rebinds. Prior to any
// bind call an input simply owns an unbound, private View of its declared
// schema — reading it yields Valid() == false forever, matching §3
// invariant 5's "never written" case.
type TSInput struct {
	View
	Owner NodeRef
	Name  string // declared input name, for error paths (§6.3)

	Kind   LinkKind
	Output *TSOutput // set when Kind == LinkPeer or LinkDeref (the resolved target after deref chasing)

	// Children holds one TSInput per declared schema child when
	// Kind == LinkComposite, recursively bound. nil otherwise.
	Children []*TSInput

	// Link holds the binding package's deref-chase state when
	// Kind == LinkDeref. Typed as an interface here to avoid tsvalue
	// importing binding.
	Link Link

	obs    overlay.Observer // subscription token registered on a Peer source, for Unsubscribe
	obsSrc overlay.Overlay  // source overlay for an atomic composite (Set/Map/Window) subscription
}

// Link is the deref-chase handle a bound input holds while Kind ==
// LinkDeref: the binding package's RefTargetLink implements this.
type Link interface {
	// Release tears down the current subscription chain.
	Release()
	// Activate (re)subscribes observer at the currently resolved target.
	Activate(observer overlay.Observer)
}

// NewInput allocates an unbound input of schema s for owner.
func NewInput(owner NodeRef, name string, s *schema.TSSchema, arena *overlay.Arena) *TSInput {
	return &TSInput{View: NewView(s, arena), Owner: owner, Name: name, Kind: LinkUnbound}
}

// NewChildInput wraps an already-allocated composite field View (one that
// a parent container's own storage/overlay tree already owns) as a
// standalone input for recursive binding — no new storage is allocated.
func NewChildInput(owner NodeRef, parentName string, view View) *TSInput {
	return &TSInput{View: view, Owner: owner, Name: parentName, Kind: LinkUnbound}
}

// SetObserver records the subscription token registered on a Peer source,
// so Unbind can find it again.
func (in *TSInput) SetObserver(obs overlay.Observer) { in.obs = obs }

// Observer returns the subscription token set by SetObserver, if any.
func (in *TSInput) Observer() (overlay.Observer, bool) { return in.obs, in.obs != nil }

// SetAtomicSource records the overlay/observer pair used for a whole-
// container (Set/Map/Window) composite subscription.
func (in *TSInput) SetAtomicSource(src overlay.Overlay, obs overlay.Observer) {
	in.obsSrc, in.obs = src, obs
}

// AtomicSource returns the overlay/observer pair set by SetAtomicSource.
func (in *TSInput) AtomicSource() (overlay.Overlay, overlay.Observer, bool) {
	return in.obsSrc, in.obs, in.obsSrc != overlay.Zero && in.obs != nil
}

// Bound reports whether this input currently resolves to a live source,
// directly or through composite children (§4.3.3 "active" input check).
func (in *TSInput) Bound() bool {
	switch in.Kind {
	case LinkPeer, LinkDeref:
		return in.Output != nil
	case LinkComposite:
		for _, c := range in.Children {
			if c.Bound() {
				return true
			}
		}
		return false
	default:
		return false
	}
}

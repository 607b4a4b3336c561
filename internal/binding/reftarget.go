package binding

import (
	"tsengine/internal/engtime"
	"tsengine/internal/overlay"
	"tsengine/internal/schema"
	"tsengine/internal/tsvalue"
)

// RefTargetLink is the Deref-side link installed by bindDeref: it
// subscribes to the Ref output's rebind notifications and keeps the
// owning input's View/Output pointed at whatever the Ref currently
// resolves to, chasing through chained Refs (§4.3.2 step 3, §4.3.3).
type RefTargetLink struct {
	input    *tsvalue.TSInput
	refView  tsvalue.View // the Ref-schema view whose retargets we observe
	observer overlay.Observer
	ro       *overlay.RefObserver

	resolved    tsvalue.View
	resolvedOut *tsvalue.TSOutput
}

func bindDeref(input *tsvalue.TSInput, refView tsvalue.View, observer overlay.Observer) {
	link := &RefTargetLink{input: input, refView: refView}
	input.Kind = tsvalue.LinkDeref
	input.Link = link
	link.ro = &overlay.RefObserver{Rebind: link.rebind}
	refView.Ovl.AddRefObserver(link.ro)
	link.resolve()
	if observer != nil {
		link.Activate(observer)
	}
}

// resolve re-reads the current RefValue and walks any chained Refs until
// it lands on a concrete output, Empty, or an Unbound composite (which is
// left unresolved — composite refs are handled at the node level per
// §4.3.1's atomic-edge rule).
func (l *RefTargetLink) resolve() {
	target := chase(l.refView.St.Ref())
	l.setSource(target)
}

func chase(rv tsvalue.RefValue) *tsvalue.TSOutput {
	for rv.Kind == tsvalue.RefBound {
		if rv.Target == nil {
			return nil
		}
		if rv.Target.Schema.Kind != schema.KindRef {
			return rv.Target
		}
		rv = rv.Target.St.Ref()
	}
	return nil
}

func (l *RefTargetLink) setSource(out *tsvalue.TSOutput) {
	if l.observer != nil && l.resolved.Ovl != overlay.Zero {
		l.resolved.Ovl.Unsubscribe(l.observer)
	}
	l.resolvedOut = out
	l.input.Output = out
	if out != nil {
		l.resolved = out.View
		l.input.View = out.View
	} else {
		l.resolved = tsvalue.View{}
		l.input.View = tsvalue.NewView(l.input.Schema, overlay.NewArena(1))
	}
	if l.observer != nil && l.resolved.Ovl != overlay.Zero {
		l.resolved.Ovl.Subscribe(l.observer)
	}
}

// rebind implements overlay.RefObserver.Rebind: resolve the new target,
// then notify synchronously so the consuming node is scheduled for the
// current tick (§4.3.3: "this rebinding is synchronous... occurs before
// subscribers that are scheduled for the same tick run").
func (l *RefTargetLink) rebind(t engtime.Time) {
	l.resolve()
	if l.observer != nil {
		l.observer.Notify(t)
	}
}

// Release implements tsvalue.Link.
func (l *RefTargetLink) Release() {
	l.refView.Ovl.RemoveRefObserver(l.ro)
	if l.observer != nil && l.resolved.Ovl != overlay.Zero {
		l.resolved.Ovl.Unsubscribe(l.observer)
	}
}

// Activate implements tsvalue.Link.
func (l *RefTargetLink) Activate(observer overlay.Observer) {
	l.observer = observer
	if l.resolved.Ovl != overlay.Zero {
		l.resolved.Ovl.Subscribe(observer)
	}
}

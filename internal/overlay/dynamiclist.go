package overlay

// AppendChild grows a DynamicList overlay by one element, parenting the new
// child overlay and returning it (§3 schema table: "DynamicList<elem>").
func (o Overlay) AppendChild(elemKind Kind) Overlay {
	child := New(o.a, elemKind)
	o.AddChild(child)
	return child
}

// TruncateChildren shrinks a DynamicList overlay to size n, dropping any
// trailing child overlay indices (the arena nodes themselves remain
// allocated but unreachable).
func (o Overlay) TruncateChildren(n int) {
	node := o.node()
	if n < len(node.children) {
		node.children = node.children[:n]
	}
}

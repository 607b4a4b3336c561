package node

import (
	"fmt"
	"strings"

	"tsengine/internal/engineerr"
	"tsengine/internal/engtime"
	"tsengine/internal/schema"
)

const defaultTraceDepth = 8

var errorOutputSchema *schema.TSSchema

// errorSchema returns the interned Bundle schema NodeError values are
// rendered into (§6.3: path, message, exception type name, truncated
// stack frames, signature rendering, input-value snapshot).
func errorSchema() *schema.TSSchema {
	if errorOutputSchema == nil {
		errorOutputSchema = schema.NewBundle(
			[]string{"path", "message", "type", "traceback", "signature", "inputs_snapshot"},
			[]*schema.TSSchema{
				schema.NewScalar(schema.String),
				schema.NewScalar(schema.String),
				schema.NewScalar(schema.String),
				schema.NewDynamicList(schema.NewScalar(schema.String)),
				schema.NewScalar(schema.String),
				schema.NewScalar(schema.String),
			},
		)
	}
	return errorOutputSchema
}

// captureError renders cause into this node's error output as an ordinary
// TS value and marks it modified at t (§4.4.3 step 3, §6.3).
func (n *Node) captureError(t engtime.Time, cause error) {
	ne := &engineerr.NodeError{
		Path:      n.path,
		Signature: n.signature,
		Cause:     cause,
	}
	depth := n.opts.TraceBackDepth
	if depth <= 0 {
		depth = defaultTraceDepth
	}
	ne.Traceback = engineerr.CaptureTraceback(depth)

	eo := n.errorOutput
	eo.FieldByName("path").SetScalar(t, n.path)
	eo.FieldByName("message").SetScalar(t, ne.Error())
	eo.FieldByName("type").SetScalar(t, fmt.Sprintf("%T", cause))
	eo.FieldByName("signature").SetScalar(t, n.signature)
	eo.FieldByName("inputs_snapshot").SetScalar(t, n.renderInputSnapshot())

	tb := eo.FieldByName("traceback")
	tb.TruncateList(0)
	for _, frame := range ne.Traceback {
		tb.AppendListItem().SetScalar(t, frame)
	}
}

func (n *Node) renderInputSnapshot() string {
	var b strings.Builder
	for i, name := range n.inputName {
		if i > 0 {
			b.WriteString(", ")
		}
		in := n.inputs[name]
		fmt.Fprintf(&b, "%s=", name)
		if !in.Valid() {
			b.WriteString("<invalid>")
			continue
		}
		fmt.Fprintf(&b, "%v", in.Scalar())
	}
	return b.String()
}

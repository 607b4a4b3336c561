// Package node implements node lifecycle and evaluation (C8 in
// SPEC_FULL.md, spec §4.4): the Created->...->Disposed state machine, the
// should_eval protocol, and error-capture routing to error_output.
package node

import (
	"tsengine/internal/engclock"
	"tsengine/internal/engtime"
	"tsengine/internal/overlay"
	"tsengine/internal/scheduler"
	"tsengine/internal/schema"
	"tsengine/internal/tsvalue"
)

// Kind is a bitflag set of node roles (§4.4.1).
type Kind int

const (
	KindSource Kind = 1 << iota
	KindPushSource
	KindPullSource
	KindCompute
	KindSink
)

// State is a node's lifecycle position (§4.4.2).
type State int

const (
	Created State = iota
	Initialised
	Starting
	Started
	Stopping
	Stopped
	Disposed
)

func (s State) String() string {
	switch s {
	case Created:
		return "Created"
	case Initialised:
		return "Initialised"
	case Starting:
		return "Starting"
	case Started:
		return "Started"
	case Stopping:
		return "Stopping"
	case Stopped:
		return "Stopped"
	case Disposed:
		return "Disposed"
	default:
		return "Unknown"
	}
}

// Options carries the per-node configuration recognized at wiring time
// (§6.2).
type Options struct {
	ActiveInputs     map[string]bool // nil = all inputs active
	ValidInputsSet   map[string]bool // nil = all non-context inputs
	AllValidInputs   map[string]bool
	ContextInputs    map[string]bool
	CaptureException bool
	TraceBackDepth   int
	RecordReplayID   string
	HasNestedGraphs  bool

	// UsesScheduler marks a node that issues its own tagged schedule
	// calls (sources, push-sources, timer-driven computes); it gates the
	// "scheduled_this_tick" branch of should_eval (§4.4.3). Resolved here
	// as an explicit per-node declaration rather than inferred at runtime
	// from tag contents, since tags carry no reserved shape to sniff.
	UsesScheduler bool
}

// EvalFunc is the host-supplied user callback invoked when should_eval is
// true (§6.1 "invoke the user-provided function").
type EvalFunc func(n *Node, t engtime.Time) error

// Subgraph lets a node with HasNestedGraphs embed and drive an inner graph
// on the same clock (§4.4.5). The graph package implements this.
type Subgraph interface {
	RunAt(t engtime.Time) error
}

// Node is one evaluation unit: its wiring, scheduler slot, and lifecycle
// state.
type Node struct {
	path      string
	signature string
	kind      Kind
	opts      Options

	index int // node_index for scheduler/graph-queue tie-breaking (§4.1.2)

	inputs    map[string]*tsvalue.TSInput
	inputName []string // declaration order, for input-snapshot rendering

	output      *tsvalue.TSOutput
	errorOutput *tsvalue.TSOutput
	stateOutput *tsvalue.TSOutput

	scheduler     *scheduler.NodeScheduler
	clock         engclock.Clock
	onHeadChanged func(nodeIndex int, head engtime.Time, has bool)

	subgraph Subgraph

	state State

	eval EvalFunc

	beforeEval []func(*Node, engtime.Time)
	afterEval  []func(*Node, engtime.Time)
}

// New constructs a node at path with the given output schema and
// node index (assigned by the graph at wiring time). Use AddInput to
// declare inputs and SetEval to attach the user callback before Initialise.
func New(path, signature string, kind Kind, outputSchema *schema.TSSchema, index int, arena *overlay.Arena, clock engclock.Clock, onHeadChanged func(nodeIndex int, head engtime.Time, has bool)) *Node {
	n := &Node{
		path:      path,
		signature: signature,
		kind:      kind,
		index:     index,
		inputs:    make(map[string]*tsvalue.TSInput),
		state:     Created,
		opts:      Options{TraceBackDepth: 8},
		clock:     clock,
		onHeadChanged: onHeadChanged,
	}
	n.scheduler = scheduler.New(index, onHeadChanged)
	n.output = tsvalue.NewOutput(n, tsvalue.MainOutput, outputSchema, arena)
	n.errorOutput = tsvalue.NewOutput(n, tsvalue.ErrorOutput, errorSchema(), arena)
	return n
}

// Scheduler returns this node's tagged schedule, for use by user code
// (source/push-source nodes) and by the graph's tick driver.
func (n *Node) Scheduler() *scheduler.NodeScheduler { return n.scheduler }

// Clock returns the evaluation clock this node was constructed against.
func (n *Node) Clock() engclock.Clock { return n.clock }

// Path implements tsvalue.NodeRef.
func (n *Node) Path() string { return n.path }

// Signature returns the node's declared signature rendering (§4.4.1).
func (n *Node) Signature() string { return n.signature }

// Index returns this node's scheduler/graph-queue tie-break index.
func (n *Node) Index() int { return n.index }

// State returns the current lifecycle state.
func (n *Node) State() State { return n.state }

// SetOptions installs this node's per-node configuration (§6.2). Must be
// called before Initialise.
func (n *Node) SetOptions(o Options) { n.opts = o }

// SetEval attaches the user callback invoked on should_eval (§6.1).
func (n *Node) SetEval(f EvalFunc) { n.eval = f }

// SetSubgraph attaches a nested graph driven by this node's eval (§4.4.5).
func (n *Node) SetSubgraph(s Subgraph) { n.subgraph = s }

// AddBeforeEval/AddAfterEval register engine-level callbacks fired around
// every eval of this node (§4.4.3 step 1/4). The graph wires the engine's
// global lists here at construction time.
func (n *Node) AddBeforeEval(f func(*Node, engtime.Time)) { n.beforeEval = append(n.beforeEval, f) }
func (n *Node) AddAfterEval(f func(*Node, engtime.Time))  { n.afterEval = append(n.afterEval, f) }

// AddInput declares an input of the given schema, in declaration order.
func (n *Node) AddInput(name string, s *schema.TSSchema, arena *overlay.Arena) *tsvalue.TSInput {
	in := tsvalue.NewInput(n, name, s, arena)
	n.inputs[name] = in
	n.inputName = append(n.inputName, name)
	return in
}

// Input returns a declared input by name.
func (n *Node) Input(name string) (*tsvalue.TSInput, bool) {
	in, ok := n.inputs[name]
	return in, ok
}

// MainOutput returns this node's primary output.
func (n *Node) MainOutput() *tsvalue.TSOutput { return n.output }

// ErrorOutput returns this node's error output (§6.3).
func (n *Node) ErrorOutput() *tsvalue.TSOutput { return n.errorOutput }

// StateOutput returns this node's recordable-state output, if declared
// (record_replay_id, §6.4); nil otherwise.
func (n *Node) StateOutput() *tsvalue.TSOutput { return n.stateOutput }

// SetStateOutput declares the recordable-state bundle output.
func (n *Node) SetStateOutput(s *schema.TSSchema, arena *overlay.Arena) *tsvalue.TSOutput {
	n.stateOutput = tsvalue.NewOutput(n, tsvalue.StateOutput, s, arena)
	return n.stateOutput
}

package engine

import (
	"context"
	"strings"
)

// OptionType is the declared type of a command input option.
type OptionType int

const (
	OptionString OptionType = iota
	OptionInteger
	OptionBoolean
	OptionUser
	OptionChannel
)

// Option describes one typed input of a command. Adapters use the schema to
// build their transport-side definitions (e.g. Discord slash options); the
// engine itself hands leftover tokens to the executor as positional args.
type Option struct {
	Name        string
	Description string
	Type        OptionType
	Required    bool
	Choices     []string
}

// Invocation carries everything an executor gets: positional arguments left
// over after resolution, the request context, the resolved node, and an
// opaque adapter payload (e.g. the Discord session + event).
type Invocation struct {
	Args    []string
	Request *RequestContext
	Node    *Node
	Data    any
}

// Response is the dispatcher's output payload. A nil *Response is a valid
// outcome and means silence.
type Response struct {
	Content   string
	Ephemeral bool
}

// Executor runs a resolved command. It may suspend on I/O; errors are caught
// at the dispatcher boundary and never propagate past it.
type Executor func(ctx context.Context, inv *Invocation) (*Response, error)

// Initializer performs a root's zero-or-one-time setup after its dependencies
// have resolved.
type Initializer func(ctx context.Context) error

// Node is one named command in the tree. Roots own a config reference, a
// dependency list and a policy; children inherit the first two by replacement
// when registered (see Tree.RegisterChild).
type Node struct {
	name        string
	description string
	options     []Option
	executor    Executor
	initializer Initializer

	children []*Node
	deps     []*Dependency
	policy   *Policy
	config   *ModuleConfig
	rootName string
	rootRef  *Node

	enabled     bool
	initialized bool
}

// NodeSpec is the construction input for a node. Config, policy and root
// tagging are filled in by the registration API, never by the caller.
type NodeSpec struct {
	Name        string
	Description string
	Options     []Option
	Execute     Executor
	Initialize  Initializer
	Deps        []*Dependency
}

// NewNode builds a detached node. It carries no config and is disabled until
// attached through Tree.Register or Tree.RegisterChild.
func NewNode(spec NodeSpec) *Node {
	return &Node{
		name:        spec.Name,
		description: spec.Description,
		options:     spec.Options,
		executor:    spec.Execute,
		initializer: spec.Initialize,
		deps:        spec.Deps,
	}
}

func (n *Node) Name() string        { return n.name }
func (n *Node) Description() string { return n.description }
func (n *Node) Options() []Option   { return n.options }

// Children returns the node's children in registration order.
func (n *Node) Children() []*Node { return n.children }

// Dependencies returns the bound dependency list. For children this is the
// root's list, installed at registration.
func (n *Node) Dependencies() []*Dependency { return n.deps }

// Policy returns the root policy governing this node, or nil.
func (n *Node) Policy() *Policy { return n.policy }

// Config returns the shared per-root module configuration, or nil for a root
// whose configuration section was missing.
func (n *Node) Config() *ModuleConfig { return n.config }

// Root returns the name of the root this node belongs to.
func (n *Node) Root() string { return n.rootName }

// Enabled reports whether the node's root is enabled. A missing config
// section or a failed initializer clears it for the process lifetime.
// Detached nodes are disabled.
func (n *Node) Enabled() bool {
	if n.rootRef == nil {
		return false
	}
	return n.rootRef.enabled
}

// Initialized reports whether the root's initialization pass completed.
func (n *Node) Initialized() bool {
	if n.rootRef == nil {
		return false
	}
	return n.rootRef.initialized
}

// child returns the child whose name matches token case-insensitively.
func (n *Node) child(token string) *Node {
	for _, c := range n.children {
		if strings.EqualFold(c.name, token) {
			return c
		}
	}
	return nil
}

package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

// UsageRecorder receives a note of every successfully executed command, e.g.
// for a storage-backed command history. Errors are the recorder's problem.
type UsageRecorder interface {
	RecordUsage(path []string, rc *RequestContext)
}

// Dispatcher drives a request through resolve, authorize, dependency check,
// execute and respond, and runs the startup initialization pass.
type Dispatcher struct {
	tree        *Tree
	log         *log.Logger
	execTimeout time.Duration
	recorder    UsageRecorder
}

// NewDispatcher binds a dispatcher to an assembled tree. execTimeout bounds a
// single executor invocation; zero disables the bound.
func NewDispatcher(tree *Tree, logger *log.Logger, execTimeout time.Duration) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{tree: tree, log: logger, execTimeout: execTimeout}
}

// SetRecorder installs an optional usage recorder.
func (d *Dispatcher) SetRecorder(r UsageRecorder) { d.recorder = r }

// Tree returns the dispatcher's command tree.
func (d *Dispatcher) Tree() *Tree { return d.tree }

// Handle resolves tokens against the tree and, if they address a command the
// request may run, executes it. A nil response means silence: unmatched or
// disabled input is deliberately ignored so the bot does not answer arbitrary
// text. data is handed to the executor untouched (adapter payload).
func (d *Dispatcher) Handle(ctx context.Context, tokens []string, rc *RequestContext, data any) *Response {
	res, ok := d.tree.Resolve(tokens)
	if !ok {
		return nil
	}
	node := res.Node
	if !node.Enabled() {
		return nil
	}

	if reasons := d.authorize(res, rc); len(reasons) > 0 {
		return &Response{
			Content:   "You can't run `" + strings.Join(res.Path, " ") + "`:\n- " + strings.Join(reasons, "\n- "),
			Ephemeral: true,
		}
	}

	for _, dep := range node.Dependencies() {
		if dep.Failed() {
			return &Response{
				Content:   "dependency unavailable: " + dep.Name(),
				Ephemeral: true,
			}
		}
	}

	// A node with children is a group, not a command; point at the children
	// instead of executing it.
	if len(node.Children()) > 0 {
		return &Response{Content: usage(res), Ephemeral: true}
	}

	resp, err := d.execute(ctx, res, rc, data)
	if err != nil {
		d.log.Printf("[ERR] Command %s failed: %v", strings.Join(res.Path, " "), err)
		return &Response{Content: "Something went wrong running that command.", Ephemeral: true}
	}
	if d.recorder != nil {
		d.recorder.RecordUsage(res.Path, rc)
	}
	return resp
}

// authorize evaluates the policy chain along the resolved path.
func (d *Dispatcher) authorize(res *Resolution, rc *RequestContext) []string {
	root := d.tree.Root(res.Path[0])
	if root == nil || root.Policy() == nil {
		return nil
	}
	chain := PolicyChain(root.Policy(), res.Path[1:])
	return EvaluateChain(chain, rc)
}

// execute invokes the node's executor under the configured timeout,
// converting panics into errors so nothing escapes the dispatcher.
func (d *Dispatcher) execute(ctx context.Context, res *Resolution, rc *RequestContext, data any) (resp *Response, err error) {
	if res.Node.executor == nil {
		return nil, nil
	}
	if d.execTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.execTimeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("executor panic: %v", r)
		}
	}()
	return res.Node.executor(ctx, &Invocation{
		Args:    res.Args,
		Request: rc,
		Node:    res.Node,
		Data:    data,
	})
}

func usage(res *Resolution) string {
	names := make([]string, 0, len(res.Node.Children()))
	for _, c := range res.Node.Children() {
		names = append(names, c.Name())
	}
	return fmt.Sprintf("`%s` expects a subcommand: %s",
		strings.Join(res.Path, " "), strings.Join(names, ", "))
}

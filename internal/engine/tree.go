package engine

import (
	"fmt"
	"log"
	"strings"
)

// ModuleConfig is the per-root configuration section. It is owned by the root
// and handed to descendants as a read-only reference. Settings is the escape
// hatch for module-specific fields.
type ModuleConfig struct {
	Enabled     bool
	Permissions *Policy
	Settings    map[string]any
}

// ConfigProvider looks up a root's configuration section by name. It is read
// once per root, at registration.
type ConfigProvider interface {
	Module(name string) (*ModuleConfig, bool)
}

// Tree is the forest of root commands. It is assembled single-threaded at
// startup via Register/RegisterChild and is read-only during dispatch, so
// resolution needs no locking.
type Tree struct {
	roots []*Node
	cfg   ConfigProvider
	log   *log.Logger
}

// NewTree returns an empty tree bound to a config provider and a diagnostic
// sink. A nil logger falls back to the standard logger.
func NewTree(cfg ConfigProvider, logger *log.Logger) *Tree {
	if logger == nil {
		logger = log.Default()
	}
	return &Tree{cfg: cfg, log: logger}
}

// Register attaches a root node. Its configuration section is looked up by
// name: a missing section permanently disables the root (warning logged,
// ErrConfigurationMissing returned alongside the still-registered node);
// a present section supplies the enabled flag and the permission policy.
// Duplicate root names are rejected.
func (t *Tree) Register(n *Node) error {
	for _, r := range t.roots {
		if strings.EqualFold(r.name, n.name) {
			return fmt.Errorf("%w: root %q", ErrDuplicateCommand, n.name)
		}
	}
	n.rootName = n.name
	n.rootRef = n
	t.roots = append(t.roots, n)

	cfg, ok := t.cfg.Module(n.name)
	if !ok {
		n.enabled = false
		t.log.Printf("[WARN] No config section for module %q, disabling", n.name)
		return fmt.Errorf("%w: %q", ErrConfigurationMissing, n.name)
	}
	n.config = cfg
	n.enabled = cfg.Enabled
	n.policy = cfg.Permissions
	return nil
}

// RegisterChild attaches child under parent. The child's config reference and
// dependency list are replaced by the parent's, and the child is tagged with
// the root's name. This is the sole way to grow the tree.
func (t *Tree) RegisterChild(parent, child *Node) error {
	if parent.child(child.name) != nil {
		return fmt.Errorf("%w: %q under %q", ErrDuplicateCommand, child.name, parent.name)
	}
	child.config = parent.config
	child.deps = parent.deps
	child.rootName = parent.rootName
	child.rootRef = parent.rootRef
	parent.children = append(parent.children, child)
	return nil
}

// Roots returns the registered roots in registration order.
func (t *Tree) Roots() []*Node { return t.roots }

// Root returns the root matching name case-insensitively, or nil.
func (t *Tree) Root(name string) *Node {
	for _, r := range t.roots {
		if strings.EqualFold(r.name, name) {
			return r
		}
	}
	return nil
}

// Resolution is the resolver's output: the addressed node, the consumed path,
// and the leftover tokens, which dispatch treats as positional arguments.
type Resolution struct {
	Node *Node
	Path []string
	Args []string
}

// Resolve walks tokens down the tree: the first token against root names,
// each further token against the current node's children, case-insensitively.
// It stops at the first non-match, at a leaf, or when tokens run out. The
// second return is false when the first token matches no root.
func (t *Tree) Resolve(tokens []string) (*Resolution, bool) {
	if len(tokens) == 0 {
		return nil, false
	}
	node := t.Root(tokens[0])
	if node == nil {
		return nil, false
	}
	path := []string{node.name}
	rest := tokens[1:]

	for len(rest) > 0 && len(node.children) > 0 {
		next := node.child(rest[0])
		if next == nil {
			break
		}
		node = next
		path = append(path, node.name)
		rest = rest[1:]
	}
	return &Resolution{Node: node, Path: path, Args: rest}, true
}

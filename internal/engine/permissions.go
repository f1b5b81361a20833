package engine

// RequestContext is the identity/location snapshot a request is authorized
// against. Capabilities are coarse permission tags resolved by the adapter
// (e.g. from Discord permission bits).
type RequestContext struct {
	UserID       string
	Roles        []string
	ChannelID    string
	CategoryID   string
	Capabilities map[string]bool
}

// HasCapability reports whether the actor holds the given capability tag.
func (rc *RequestContext) HasCapability(tag string) bool {
	return rc.Capabilities[tag]
}

func (rc *RequestContext) hasAnyRole(set []string) bool {
	for _, r := range rc.Roles {
		for _, s := range set {
			if r == s {
				return true
			}
		}
	}
	return false
}

// ContextBlock names the identities and locations an allow or deny list
// matches against.
type ContextBlock struct {
	Users      []string `yaml:"users"`
	Roles      []string `yaml:"roles"`
	Channels   []string `yaml:"channels"`
	Categories []string `yaml:"categories"`
}

// Policy is a permission policy: required capability tags, optional allow and
// deny context blocks, and per-submodule overrides keyed by child name,
// recursively, so overrides nest to any depth.
type Policy struct {
	Capabilities []string           `yaml:"capabilities"`
	Allow        *ContextBlock      `yaml:"allow"`
	Deny         *ContextBlock      `yaml:"deny"`
	Submodules   map[string]*Policy `yaml:"submodules"`
}

// PolicyChain collects the policies applicable to a resolved path: the root's
// policy plus, for each path element below the root, the matching nested
// submodule policy. Missing entries just end the walk.
func PolicyChain(root *Policy, path []string) []*Policy {
	var chain []*Policy
	p := root
	if p == nil {
		return nil
	}
	chain = append(chain, p)
	for _, name := range path {
		p = p.Submodules[name]
		if p == nil {
			break
		}
		chain = append(chain, p)
	}
	return chain
}

// tier is one priority level of allow/deny matching.
type tier struct {
	name  string
	block func(*ContextBlock) []string
	match func(*RequestContext, []string) bool
}

// Tiers in strict priority order: user > role > channel > category.
var tiers = []tier{
	{
		name:  "user",
		block: func(b *ContextBlock) []string { return b.Users },
		match: func(rc *RequestContext, set []string) bool { return contains(set, rc.UserID) },
	},
	{
		name:  "role",
		block: func(b *ContextBlock) []string { return b.Roles },
		match: func(rc *RequestContext, set []string) bool { return rc.hasAnyRole(set) },
	},
	{
		name:  "channel",
		block: func(b *ContextBlock) []string { return b.Channels },
		match: func(rc *RequestContext, set []string) bool { return contains(set, rc.ChannelID) },
	},
	{
		name:  "category",
		block: func(b *ContextBlock) []string { return b.Categories },
		match: func(rc *RequestContext, set []string) bool { return contains(set, rc.CategoryID) },
	},
}

// Evaluate checks a single policy against the request and returns every
// contributing denial reason, capability reasons first. An empty result means
// the policy authorizes the request.
func (p *Policy) Evaluate(rc *RequestContext) []string {
	var reasons []string
	for _, tag := range p.Capabilities {
		if !rc.HasCapability(tag) {
			reasons = append(reasons, "missing capability: "+tag)
		}
	}

	// No context blocks configured: capabilities are the whole policy.
	if p.Allow == nil && p.Deny == nil {
		return reasons
	}

	for _, t := range tiers {
		if p.Allow != nil {
			if set := t.block(p.Allow); len(set) > 0 {
				if t.match(rc, set) {
					// Definitive allow at this tier suppresses its own deny
					// and every lower tier.
					break
				}
				reasons = append(reasons, "not in allowed "+t.name+" list")
			}
		}
		if p.Deny != nil {
			if set := t.block(p.Deny); len(set) > 0 && t.match(rc, set) {
				reasons = append(reasons, "blocked by denied "+t.name+" list")
			}
		}
	}
	return reasons
}

// EvaluateChain evaluates each policy in the chain independently and
// concatenates the reasons. An empty result authorizes the request.
func EvaluateChain(chain []*Policy, rc *RequestContext) []string {
	var reasons []string
	for _, p := range chain {
		reasons = append(reasons, p.Evaluate(rc)...)
	}
	return reasons
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

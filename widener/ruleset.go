package widener

import (
	"sort"

	"github.com/wippyai/class-widener/errors"
)

// Ruleset maps targets to requested transitions. It is immutable once
// built and safe for concurrent reads. A nil *Ruleset behaves as empty.
type Ruleset struct {
	rules     map[Target]Transitions
	owners    map[string]struct{}
	namespace string
}

// Lookup returns the transitions requested for t.
func (r *Ruleset) Lookup(t Target) Transitions {
	if r == nil {
		return 0
	}
	return r.rules[t]
}

// Class returns the transitions requested for the class itself.
func (r *Ruleset) Class(name string) Transitions {
	return r.Lookup(ClassTarget(name))
}

// Field returns the transitions requested for a field.
func (r *Ruleset) Field(owner, name, descriptor string) Transitions {
	return r.Lookup(FieldTarget(owner, name, descriptor))
}

// Method returns the transitions requested for a method.
func (r *Ruleset) Method(owner, name, descriptor string) Transitions {
	return r.Lookup(MethodTarget(owner, name, descriptor))
}

// Targets reports whether any rule is owned by the class.
func (r *Ruleset) Targets(owner string) bool {
	if r == nil {
		return false
	}
	_, ok := r.owners[owner]
	return ok
}

// Len returns the number of distinct targets.
func (r *Ruleset) Len() int {
	if r == nil {
		return 0
	}
	return len(r.rules)
}

// Namespace returns the mapping namespace declared by the rule source, or
// "" when none was declared.
func (r *Ruleset) Namespace() string {
	if r == nil {
		return ""
	}
	return r.namespace
}

// Rule is one target with its transitions.
type Rule struct {
	Target      Target
	Transitions Transitions
}

// Rules returns all rules ordered by owner, kind, name and descriptor.
func (r *Ruleset) Rules() []Rule {
	if r == nil {
		return nil
	}
	out := make([]Rule, 0, len(r.rules))
	for t, ts := range r.rules {
		out = append(out, Rule{Target: t, Transitions: ts})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Target, out[j].Target
		if a.Owner != b.Owner {
			return a.Owner < b.Owner
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Descriptor < b.Descriptor
	})
	return out
}

// RulesetBuilder accumulates rules. It is not safe for concurrent use.
type RulesetBuilder struct {
	rules     map[Target]Transitions
	namespace string
}

// NewRulesetBuilder creates an empty builder.
func NewRulesetBuilder() *RulesetBuilder {
	return &RulesetBuilder{rules: make(map[Target]Transitions)}
}

// Add merges transitions into the rule for t.
func (b *RulesetBuilder) Add(t Target, ts ...Transition) *RulesetBuilder {
	set := Of(ts...)
	if set.Empty() {
		return b
	}
	b.rules[t] = b.rules[t].Union(set)
	return b
}

// SetNamespace records the mapping namespace. Rule sources written against
// different namespaces cannot be combined.
func (b *RulesetBuilder) SetNamespace(ns string) error {
	if b.namespace != "" && ns != "" && b.namespace != ns {
		return errors.RuleConflict("namespace " + ns + " does not match " + b.namespace)
	}
	if ns != "" {
		b.namespace = ns
	}
	return nil
}

// Merge adds every rule of r.
func (b *RulesetBuilder) Merge(r *Ruleset) error {
	if err := b.SetNamespace(r.Namespace()); err != nil {
		return err
	}
	if r == nil {
		return nil
	}
	for t, ts := range r.rules {
		b.rules[t] = b.rules[t].Union(ts)
	}
	return nil
}

// Build freezes the accumulated rules. The builder may keep being used;
// later additions do not affect the returned Ruleset.
func (b *RulesetBuilder) Build() *Ruleset {
	rs := &Ruleset{
		rules:     make(map[Target]Transitions, len(b.rules)),
		owners:    make(map[string]struct{}),
		namespace: b.namespace,
	}
	for t, ts := range b.rules {
		rs.rules[t] = ts
		rs.owners[t.Owner] = struct{}{}
	}
	return rs
}

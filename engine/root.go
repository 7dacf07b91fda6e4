package engine

// Root is the parsed stylesheet handed to plugins. It is a flat,
// source-ordered list of top-level items; @-rules with blocks carry
// their own nested items.
type Root struct {
	Items  []Item
	Source string // path the stylesheet was parsed from, if known
}

// Item is a single node. Exactly one of Rule, AtRule or Comment is
// non-nil.
type Item struct {
	Rule    *Rule
	AtRule  *AtRule
	Comment *Comment
}

// Rule is a selector group with its declarations.
type Rule struct {
	Selector string // full selector text, comma groups preserved
	Decls    []Decl
	Line     int // 1-based source line, 0 when unknown
}

// Decl is a single property declaration.
type Decl struct {
	Prop      string
	Value     string
	Important bool
}

// AtRule is an @-rule. Block-less rules (@import, @charset) have nil
// Items and carry everything in Params.
type AtRule struct {
	Name   string // without the leading "@"
	Params string
	Items  []Item // nil for block-less rules
	Line   int
}

// Comment is a top-level comment.
type Comment struct {
	Text string // without the comment markers
	Line int
}

// WalkRules visits every rule, including rules nested in @-rule
// blocks, in source order. Returning false stops the walk.
func (r *Root) WalkRules(fn func(*Rule) bool) {
	walkRules(r.Items, fn)
}

func walkRules(items []Item, fn func(*Rule) bool) bool {
	for i := range items {
		switch {
		case items[i].Rule != nil:
			if !fn(items[i].Rule) {
				return false
			}
		case items[i].AtRule != nil:
			if !walkRules(items[i].AtRule.Items, fn) {
				return false
			}
		}
	}
	return true
}

// WalkDecls visits every declaration of every rule in source order.
func (r *Root) WalkDecls(fn func(rule *Rule, decl *Decl) bool) {
	r.WalkRules(func(rule *Rule) bool {
		for i := range rule.Decls {
			if !fn(rule, &rule.Decls[i]) {
				return false
			}
		}
		return true
	})
}

// Get returns the first declaration value for prop across all rules
// matching the selector, or false.
func (r *Root) Get(selector, prop string) (string, bool) {
	var val string
	var found bool
	r.WalkRules(func(rule *Rule) bool {
		if rule.Selector != selector {
			return true
		}
		for _, d := range rule.Decls {
			if d.Prop == prop {
				val, found = d.Value, true
				return false
			}
		}
		return true
	})
	return val, found
}

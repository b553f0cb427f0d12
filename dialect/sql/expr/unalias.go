package expr

// RemoveAliases rewrites e with all table qualifiers matching one of the
// given aliases stripped from column references. With no aliases given,
// every qualifier is stripped. Predicates built against an aliased
// selector can this way be reused in statements that do not support
// table aliases, such as update and delete.
//
// The input tree is never modified; when nothing matches, the result is
// the input node itself.
func RemoveAliases(e Expr, aliases ...string) Expr {
	v := &unalias{}
	v.Self = v
	if len(aliases) > 0 {
		v.match = make(map[string]bool, len(aliases))
		for _, a := range aliases {
			v.match[a] = true
		}
	}
	return v.Visit(e)
}

type unalias struct {
	Rewriter
	// match restricts stripping to the listed qualifiers. Nil means all.
	match map[string]bool
}

func (v *unalias) VisitColumn(c *Column) Expr {
	if c.Table == "" || (v.match != nil && !v.match[c.Table]) {
		return c
	}
	cc := *c
	cc.Table = ""
	return &cc
}

func (v *unalias) VisitTable(t *TableRef) Expr {
	if t.Alias == "" || (v.match != nil && !v.match[t.Alias]) {
		return t
	}
	tt := *t
	tt.Alias = ""
	return &tt
}

func (v *unalias) VisitSelect(s *Select) Expr {
	out := v.Rewriter.VisitSelect(s).(*Select)
	if out.As == "" || (v.match != nil && !v.match[out.As]) {
		return out
	}
	if out == s {
		cp := *s
		out = &cp
	}
	out.As = ""
	return out
}

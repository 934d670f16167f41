package readmodel

import (
	"fmt"
	"strings"
)

// Query is the Postgres rendition of a pipeline. CountSQL is only populated
// for paginated pipelines; it references the leading CountArgs prefix of Args.
type Query struct {
	SQL       string
	CountSQL  string
	Args      []any
	CountArgs []any
	Page      PageRequest
}

type compiler struct {
	alias   string
	selects []string
	joins   []string
	wheres  []string
	orderBy string
	args    []any
	page    *PageRequest
}

// Compile translates the pipeline into SQL. Filter arguments are bound before
// select-list arguments so the count query can reuse a prefix of the argument
// list. Select-list columns appear in stage order, so callers scan rows in
// the order they composed the pipeline.
func Compile(p *Pipeline) (Query, error) {
	if p == nil || p.table == "" || p.alias == "" {
		return Query{}, fmt.Errorf("readmodel: pipeline requires a root table and alias")
	}

	c := &compiler{alias: p.alias}

	// Filters, joins, ordering and pagination first: their bindings are
	// shared with the count query.
	for _, s := range p.stages {
		switch st := s.(type) {
		case Match:
			c.wheres = append(c.wheres, fmt.Sprintf("%s = %s", c.qualify(st.Column), c.bind(st.Value)))
		case MatchExpr:
			c.wheres = append(c.wheres, st.Expr)
		case LookupOne:
			c.joins = append(c.joins, fmt.Sprintf(
				"LEFT JOIN %s %s ON %s.%s = %s",
				st.Table, st.Alias, st.Alias, st.ForeignColumn, c.qualify(st.LocalColumn),
			))
		case LookupLatest:
			c.joins = append(c.joins, fmt.Sprintf(
				"LEFT JOIN LATERAL (SELECT * FROM %s WHERE %s = %s ORDER BY created_at DESC LIMIT 1) %s ON TRUE",
				st.Table, st.ForeignColumn, c.qualify(st.LocalColumn), st.Alias,
			))
		case Sort:
			dir := "ASC"
			if st.Descending {
				dir = "DESC"
			}
			c.orderBy = fmt.Sprintf("%s %s", c.qualify(st.Column), dir)
		case Paginate:
			req := PageRequest{Page: st.Page, Limit: st.Limit}.Normalize()
			c.page = &req
		case Project, DeriveCount, DeriveSum, DeriveMembership:
			// select-list stages, handled below
		default:
			return Query{}, fmt.Errorf("readmodel: unsupported stage %T", s)
		}
	}

	countArgs := len(c.args)

	for _, s := range p.stages {
		switch st := s.(type) {
		case Project:
			for _, col := range st.Columns {
				c.selects = append(c.selects, c.qualify(col))
			}
		case LookupOne:
			for _, col := range st.Columns {
				c.selects = append(c.selects, fmt.Sprintf("%s.%s", st.Alias, col))
			}
		case LookupLatest:
			for _, col := range st.Columns {
				c.selects = append(c.selects, fmt.Sprintf("%s.%s", st.Alias, col))
			}
		case DeriveCount:
			c.selects = append(c.selects, fmt.Sprintf(
				"(SELECT COUNT(*) FROM %s d WHERE d.%s = %s%s) AS %s",
				st.Table, st.ForeignColumn, c.local(st.LocalColumn), c.extra(st.Extra), st.As,
			))
		case DeriveSum:
			c.selects = append(c.selects, fmt.Sprintf(
				"(SELECT COALESCE(SUM(d.%s), 0) FROM %s d WHERE d.%s = %s%s) AS %s",
				st.SumColumn, st.Table, st.ForeignColumn, c.local(st.LocalColumn), c.extra(st.Extra), st.As,
			))
		case DeriveMembership:
			if st.Actor == "" {
				c.selects = append(c.selects, fmt.Sprintf("FALSE AS %s", st.As))
				continue
			}
			c.selects = append(c.selects, fmt.Sprintf(
				"EXISTS(SELECT 1 FROM %s d WHERE d.%s = %s AND d.%s = %s%s) AS %s",
				st.Table, st.ForeignColumn, c.local(st.LocalColumn), st.MemberColumn, c.bind(st.Actor), c.extra(st.Extra), st.As,
			))
		}
	}

	if len(c.selects) == 0 {
		return Query{}, fmt.Errorf("readmodel: pipeline projects no columns")
	}

	if c.orderBy == "" {
		c.orderBy = fmt.Sprintf("%s.created_at DESC", p.alias)
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(c.selects, ", "))
	fmt.Fprintf(&sb, " FROM %s %s", p.table, p.alias)
	for _, j := range c.joins {
		sb.WriteString(" ")
		sb.WriteString(j)
	}
	if len(c.wheres) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(c.wheres, " AND "))
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(c.orderBy)

	q := Query{Args: c.args}

	if c.page != nil {
		fmt.Fprintf(&sb, " LIMIT %d OFFSET %d", c.page.Limit, (c.page.Page-1)*c.page.Limit)
		q.Page = *c.page
		q.CountArgs = c.args[:countArgs]

		var cb strings.Builder
		fmt.Fprintf(&cb, "SELECT COUNT(*) FROM %s %s", p.table, p.alias)
		for _, j := range c.joins {
			cb.WriteString(" ")
			cb.WriteString(j)
		}
		if len(c.wheres) > 0 {
			cb.WriteString(" WHERE ")
			cb.WriteString(strings.Join(c.wheres, " AND "))
		}
		q.CountSQL = cb.String()
	}

	q.SQL = sb.String()
	return q, nil
}

func (c *compiler) bind(v any) string {
	c.args = append(c.args, v)
	return fmt.Sprintf("$%d", len(c.args))
}

func (c *compiler) qualify(col string) string {
	if strings.Contains(col, ".") || strings.Contains(col, "(") {
		return col
	}
	return c.alias + "." + col
}

func (c *compiler) local(col string) string {
	if col == "" {
		return c.alias + ".id"
	}
	return c.qualify(col)
}

func (c *compiler) extra(extra []Match) string {
	var sb strings.Builder
	for _, m := range extra {
		fmt.Fprintf(&sb, " AND d.%s = %s", m.Column, c.bind(m.Value))
	}
	return sb.String()
}

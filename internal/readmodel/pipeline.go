// Package readmodel builds actor-relative, denormalized views as ordered
// stage pipelines. Stages are plain descriptors; the Postgres compiler in
// this package translates a pipeline into a single parameterized query, which
// keeps the composition logic independent of the store's query language.
package readmodel

// Stage is one step of a view pipeline. The concrete stage types below are
// the only implementations.
type Stage interface {
	stage()
}

// Match filters the root collection by column equality.
type Match struct {
	Column string
	Value  any
}

// MatchExpr filters by a raw boolean expression over root or joined columns.
// The expression carries no caller-supplied values.
type MatchExpr struct {
	Expr string
}

// LookupOne joins a single related row (typically the owning user) and
// projects a subset of its columns. A missing related row yields NULLs for
// the projected columns rather than dropping the root row.
type LookupOne struct {
	Table         string
	Alias         string
	LocalColumn   string
	ForeignColumn string
	Columns       []string
}

// LookupLatest joins the most recent dependent row, ordered by created_at
// descending (the channel's latest video, for example).
type LookupLatest struct {
	Table         string
	Alias         string
	LocalColumn   string
	ForeignColumn string
	Columns       []string
}

// DeriveCount projects the number of dependent rows referencing the row
// identified by LocalColumn (the root id when empty). Zero dependents yields
// 0, never NULL. Table may be a parenthesized derived table.
type DeriveCount struct {
	As            string
	Table         string
	ForeignColumn string
	LocalColumn   string
	Extra         []Match
}

// DeriveSum projects the sum of a column over dependent rows (0 when none).
type DeriveSum struct {
	As            string
	Table         string
	ForeignColumn string
	LocalColumn   string
	SumColumn     string
	Extra         []Match
}

// DeriveMembership projects whether the requesting actor appears among the
// dependent rows (isLiked, isSubscribed). When Actor is empty the stage
// compiles to constant FALSE: relativization degrades for anonymous callers,
// it never fails.
type DeriveMembership struct {
	As            string
	Table         string
	ForeignColumn string
	LocalColumn   string
	MemberColumn  string
	Actor         string
	Extra         []Match
}

// Sort orders the result set. Pipelines without a Sort stage default to
// created_at descending on the root.
type Sort struct {
	Column     string
	Descending bool
}

// Project declares the root columns included in the output.
type Project struct {
	Columns []string
}

// Paginate applies 1-indexed page/limit windows and requests a total count.
type Paginate struct {
	Page  int
	Limit int
}

func (Match) stage()            {}
func (MatchExpr) stage()        {}
func (LookupOne) stage()        {}
func (LookupLatest) stage()     {}
func (DeriveCount) stage()      {}
func (DeriveSum) stage()        {}
func (DeriveMembership) stage() {}
func (Sort) stage()             {}
func (Project) stage()          {}
func (Paginate) stage()         {}

// Pipeline is an ordered stage sequence over a root table.
type Pipeline struct {
	table  string
	alias  string
	stages []Stage
}

// From starts a pipeline over the given root table and alias.
func From(table, alias string) *Pipeline {
	return &Pipeline{table: table, alias: alias}
}

// Append adds stages in order and returns the pipeline for chaining.
func (p *Pipeline) Append(stages ...Stage) *Pipeline {
	p.stages = append(p.stages, stages...)
	return p
}

const (
	// DefaultPage is the 1-indexed page applied when the caller omits one.
	DefaultPage = 1
	// DefaultLimit is the page size applied when the caller omits one.
	DefaultLimit = 10
)

// PageRequest carries pagination input from the transport layer.
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize clamps a page request to the defaults.
func (r PageRequest) Normalize() PageRequest {
	if r.Page < 1 {
		r.Page = DefaultPage
	}
	if r.Limit < 1 {
		r.Limit = DefaultLimit
	}
	return r
}

// PageMeta describes the window returned alongside a paginated result.
type PageMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

// NewPageMeta computes page metadata for a total row count.
func NewPageMeta(req PageRequest, total int64) PageMeta {
	req = req.Normalize()
	pages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return PageMeta{Page: req.Page, Limit: req.Limit, TotalCount: total, TotalPages: pages}
}

package semantic

import (
	"nhs-dm-tool/internal/catalog"
)

const (
	// EscalationThreshold is the restricted-search score below which the
	// controller retries over the whole source catalog.
	EscalationThreshold = 0.55

	HintBonus     = 0.08
	PriorityBonus = 0.03
)

// Candidate is the best source field found for a target field.
type Candidate struct {
	Field catalog.SchemaField
	Score float64
}

// Found reports whether any source row was scored.
func (c Candidate) Found() bool {
	return c.Field.FieldName != ""
}

// Resolver finds the best source candidate for a target field.
type Resolver interface {
	// ResolveRestricted searches the hinted source tables of targetTable.
	// restricted is false when no hinted table is available and the whole
	// catalog was searched instead.
	ResolveRestricted(targetTable, targetField string) (best Candidate, restricted bool)
	// ResolveGlobal searches the whole source catalog.
	ResolveGlobal(targetTable, targetField string) Candidate
}

// Index pre-tokenizes every source catalog row.
type Index struct {
	rows    []catalog.SchemaField
	tokens  [][]string
	byTable map[string][]int
}

// NewIndex builds an Index over src in catalog order.
func NewIndex(src *catalog.Catalog) *Index {
	rows := src.Rows()
	idx := &Index{
		rows:    rows,
		tokens:  make([][]string, len(rows)),
		byTable: make(map[string][]int),
	}
	for i, r := range rows {
		idx.tokens[i] = Tokenize(r.FieldName)
		idx.byTable[r.TableName] = append(idx.byTable[r.TableName], i)
	}
	return idx
}

// Len is the number of indexed rows.
func (idx *Index) Len() int {
	return len(idx.rows)
}

// HintedResolver scores candidates with hint-table and priority-table bonuses.
type HintedResolver struct {
	index    *Index
	hints    map[string][]string
	priority map[string]bool
	tcache   map[string][]string
}

// NewHintedResolver returns a resolver over idx. A nil hints or priority map
// disables the respective bonus.
func NewHintedResolver(idx *Index, hints map[string][]string, priority map[string]bool) *HintedResolver {
	return &HintedResolver{
		index:    idx,
		hints:    hints,
		priority: priority,
		tcache:   make(map[string][]string),
	}
}

func (r *HintedResolver) targetTokens(field string) []string {
	if t, ok := r.tcache[field]; ok {
		return t
	}
	t := Tokenize(field)
	r.tcache[field] = t
	return t
}

func (r *HintedResolver) hintSet(targetTable string) map[string]bool {
	hs := r.hints[targetTable]
	if len(hs) == 0 {
		return nil
	}
	set := make(map[string]bool, len(hs))
	for _, h := range hs {
		set[h] = true
	}
	return set
}

// ResolveRestricted implements Resolver.
func (r *HintedResolver) ResolveRestricted(targetTable, targetField string) (Candidate, bool) {
	var rows []int
	for _, t := range r.hints[targetTable] {
		rows = append(rows, r.index.byTable[t]...)
	}
	if len(rows) == 0 {
		return r.ResolveGlobal(targetTable, targetField), false
	}
	return r.scan(targetTable, targetField, rows), true
}

// ResolveGlobal implements Resolver.
func (r *HintedResolver) ResolveGlobal(targetTable, targetField string) Candidate {
	rows := make([]int, r.index.Len())
	for i := range rows {
		rows[i] = i
	}
	return r.scan(targetTable, targetField, rows)
}

// scan keeps the first row reaching the highest score.
func (r *HintedResolver) scan(targetTable, targetField string, rows []int) Candidate {
	hinted := r.hintSet(targetTable)
	tt := r.targetTokens(targetField)

	best := Candidate{Score: -1}
	for _, i := range rows {
		row := r.index.rows[i]
		s := ScoreTokens(targetField, tt, row.FieldName, r.index.tokens[i])
		if hinted[row.TableName] {
			s += HintBonus
		}
		if r.priority[row.TableName] {
			s += PriorityBonus
		}
		s = capScore(s)
		if s > best.Score {
			best = Candidate{Field: row, Score: s}
		}
	}
	if best.Score < 0 {
		return Candidate{}
	}
	return best
}

// Controller composes the two search phases: hinted tables first, the whole
// catalog only when the hinted result stays below Threshold.
type Controller struct {
	Resolver  Resolver
	Threshold float64
}

// NewController returns a Controller using EscalationThreshold.
func NewController(r Resolver) *Controller {
	return &Controller{Resolver: r, Threshold: EscalationThreshold}
}

// Resolve returns the best candidate for (targetTable, targetField).
func (c *Controller) Resolve(targetTable, targetField string) Candidate {
	best, restricted := c.Resolver.ResolveRestricted(targetTable, targetField)
	if !restricted || best.Score >= c.Threshold {
		return best
	}
	if g := c.Resolver.ResolveGlobal(targetTable, targetField); g.Score > best.Score {
		return g
	}
	return best
}

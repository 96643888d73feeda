// Package parser turns raw query text into a QueryPlan using the same
// tokenisation as the index, so every query token can prefix-match an
// indexed term.
package parser

import (
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/indexer/tokenizer"
)

type QueryPlan struct {
	// Terms are the distinct query tokens in input order. A repeated token
	// contributes to the score once.
	Terms    []string
	RawQuery string
	// Category restricts results to one category when non-empty.
	Category string
}

func Parse(query string) *QueryPlan {
	plan := &QueryPlan{
		Terms:    make([]string, 0),
		RawQuery: query,
	}
	if strings.TrimSpace(query) == "" {
		return plan
	}
	plan.Terms = append(plan.Terms, tokenizer.Terms(query)...)
	return plan
}

// InCategory returns a copy of p restricted to category.
func (p *QueryPlan) InCategory(category string) *QueryPlan {
	cp := *p
	cp.Category = strings.TrimSpace(category)
	return &cp
}

// Empty reports whether the plan can match nothing.
func (p *QueryPlan) Empty() bool {
	return len(p.Terms) == 0
}

// Key is a canonical form of the plan: two queries with the same Key
// always produce the same results against the same index.
func (p *QueryPlan) Key() string {
	terms := append([]string(nil), p.Terms...)
	sort.Strings(terms)
	key := strings.Join(terms, ",")
	if p.Category != "" {
		key += "|in:" + strings.ToLower(p.Category)
	}
	return key
}

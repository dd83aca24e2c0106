package parser

import (
	"strings"

	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/indexer/tokenizer"
)

// QueryPlan is a parsed AND query.
type QueryPlan struct {
	Words    []string
	RawQuery string
}

// Parse lowercases query and splits it on whitespace. Every remaining word
// must occur in a document for it to match; repeated words are kept.
func Parse(query string) *QueryPlan {
	fields := strings.Fields(query)
	plan := &QueryPlan{
		Words:    make([]string, 0, len(fields)),
		RawQuery: query,
	}
	for _, f := range fields {
		plan.Words = append(plan.Words, tokenizer.Normalize(f))
	}
	return plan
}

// Empty reports whether the query has no words.
func (p *QueryPlan) Empty() bool {
	return len(p.Words) == 0
}

// Key is a canonical form of the word list, usable as a cache key.
func (p *QueryPlan) Key() string {
	return strings.Join(p.Words, " ")
}

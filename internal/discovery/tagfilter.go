package discovery

import (
	"strings"

	"github.com/netascode/nac-test-go/internal/model"
)

// TagFilter applies include/exclude tag patterns to a set of test records.
// Pattern grammar: a bare tag, "*" wildcards within a tag, "A AND B" / "A & B"
// (all must be present), "A OR B" (any present), and a leading "NOT" negating
// the whole pattern.
type TagFilter struct {
	include []pattern
	exclude []pattern
}

// NewTagFilter compiles include/exclude pattern strings into a TagFilter. An
// empty include slice means "keep all".
func NewTagFilter(include, exclude []string) *TagFilter {
	return &TagFilter{include: compilePatterns(include), exclude: compilePatterns(exclude)}
}

// Apply filters records, preserving order. A record is kept if it matches
// any include pattern (or include is empty) and no exclude pattern matches.
func (f *TagFilter) Apply(records []model.TestFileRecord) []model.TestFileRecord {
	if len(f.include) == 0 && len(f.exclude) == 0 {
		return records
	}

	out := make([]model.TestFileRecord, 0, len(records))
	for _, r := range records {
		if len(f.include) > 0 && !anyMatches(f.include, r.Groups) {
			continue
		}
		if anyMatches(f.exclude, r.Groups) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func anyMatches(patterns []pattern, groups []string) bool {
	for _, p := range patterns {
		if p.matches(groups) {
			return true
		}
	}
	return false
}

type patternOp int

const (
	opLiteral patternOp = iota
	opAnd
	opOr
)

// conjunct is one tag operand within a pattern, with its own NOT.
type conjunct struct {
	negate bool
	tag    string
}

// pattern is one compiled include/exclude entry.
type pattern struct {
	negate    bool
	op        patternOp
	conjuncts []conjunct
}

func compilePatterns(raw []string) []pattern {
	out := make([]pattern, 0, len(raw))
	for _, r := range raw {
		out = append(out, compilePattern(r))
	}
	return out
}

func compilePattern(raw string) pattern {
	s := strings.TrimSpace(raw)
	p := pattern{op: opLiteral}

	for {
		upper := strings.ToUpper(s)
		if strings.HasPrefix(upper, "NOT ") {
			p.negate = !p.negate
			s = strings.TrimSpace(s[4:])
			continue
		}
		break
	}

	var tags []string
	switch {
	case containsWord(s, "AND") || strings.Contains(s, "&"):
		p.op = opAnd
		tags = splitTags(s, "AND", "&")
	case containsWord(s, "OR"):
		p.op = opOr
		tags = splitTags(s, "OR", "")
	default:
		p.op = opLiteral
		tags = []string{s}
	}

	p.conjuncts = make([]conjunct, 0, len(tags))
	for _, t := range tags {
		p.conjuncts = append(p.conjuncts, parseConjunct(t))
	}
	return p
}

// parseConjunct strips a per-operand "NOT " prefix, so "a AND NOT c" negates
// only the "c" operand rather than the whole pattern.
func parseConjunct(s string) conjunct {
	c := conjunct{tag: s}
	for {
		upper := strings.ToUpper(c.tag)
		if strings.HasPrefix(upper, "NOT ") {
			c.negate = !c.negate
			c.tag = strings.TrimSpace(c.tag[4:])
			continue
		}
		break
	}
	return c
}

func containsWord(s, word string) bool {
	for _, f := range strings.Fields(s) {
		if strings.EqualFold(f, word) {
			return true
		}
	}
	return false
}

func splitTags(s, word, symbol string) []string {
	sep := " " + word + " "
	parts := splitCaseInsensitive(s, sep)
	if symbol != "" && len(parts) == 1 {
		parts = strings.Split(s, symbol)
	}
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

func splitCaseInsensitive(s, sep string) []string {
	upper := strings.ToUpper(s)
	sepUpper := strings.ToUpper(sep)
	var parts []string
	for {
		idx := strings.Index(upper, sepUpper)
		if idx < 0 {
			parts = append(parts, s)
			break
		}
		parts = append(parts, s[:idx])
		s = s[idx+len(sep):]
		upper = upper[idx+len(sep):]
	}
	return parts
}

func (p pattern) matches(groups []string) bool {
	var result bool
	switch p.op {
	case opAnd:
		result = true
		for _, c := range p.conjuncts {
			if !c.present(groups) {
				result = false
				break
			}
		}
	case opOr:
		result = false
		for _, c := range p.conjuncts {
			if c.present(groups) {
				result = true
				break
			}
		}
	default:
		result = len(p.conjuncts) > 0 && p.conjuncts[0].present(groups)
	}

	if p.negate {
		return !result
	}
	return result
}

func (c conjunct) present(groups []string) bool {
	present := tagPresent(c.tag, groups)
	if c.negate {
		return !present
	}
	return present
}

func tagPresent(tagPattern string, groups []string) bool {
	for _, g := range groups {
		if wildcardMatch(tagPattern, g) {
			return true
		}
	}
	return false
}

// wildcardMatch matches pattern against s, where "*" in pattern matches any
// substring (including empty).
func wildcardMatch(pattern, s string) bool {
	if !strings.Contains(pattern, "*") {
		return pattern == s
	}
	segments := strings.Split(pattern, "*")
	pos := 0
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		idx := strings.Index(s[pos:], seg)
		if idx < 0 {
			return false
		}
		if i == 0 && idx != 0 {
			return false
		}
		pos += idx + len(seg)
	}
	if last := segments[len(segments)-1]; last != "" && !strings.HasSuffix(s, last) {
		return false
	}
	return true
}

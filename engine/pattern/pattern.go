// Package pattern matches raw input lines against rule patterns.
// Intentionally dumb: literal words, wildcards, and captures. No NLP.
package pattern

import (
	"strings"

	"golang.org/x/text/cases"
)

// Wildcard matches zero or more words and binds nothing.
const Wildcard = "*"

// Bindings maps capture names to the words they matched.
type Bindings map[string]string

// fold case-folds a word. Casers are stateful, so each call gets its own.
func fold(w string) string {
	return cases.Fold().String(w)
}

// token is one compiled word of a pattern.
type token struct {
	literal string // folded literal, empty for wildcards and captures
	capture string // capture name for <name>
	any     bool   // true for *
}

// Pattern is a compiled rule pattern. Alternatives are separated by "|".
type Pattern struct {
	source string
	alts   [][]token
}

// Compile parses a pattern string. It never fails: anything that is not a
// wildcard or a capture is a literal word.
func Compile(src string) Pattern {
	p := Pattern{source: strings.TrimSpace(src)}
	for _, alt := range strings.Split(p.source, "|") {
		var toks []token
		for _, w := range strings.Fields(alt) {
			toks = append(toks, compileWord(w))
		}
		// Empty alternatives never match.
		if len(toks) > 0 {
			p.alts = append(p.alts, toks)
		}
	}
	return p
}

func compileWord(w string) token {
	switch {
	case w == Wildcard:
		return token{any: true}
	case len(w) > 2 && strings.HasPrefix(w, "<") && strings.HasSuffix(w, ">"):
		return token{capture: w[1 : len(w)-1]}
	default:
		return token{literal: fold(w)}
	}
}

// String returns the pattern source.
func (p Pattern) String() string {
	return p.source
}

// Match matches input against the pattern. It returns the bindings
// (possibly empty) and true on a match, or nil and false.
func (p Pattern) Match(input string) (Bindings, bool) {
	words := strings.Fields(strings.TrimSpace(input))
	folded := make([]string, len(words))
	for i, w := range words {
		folded[i] = fold(w)
	}
	for _, alt := range p.alts {
		b := Bindings{}
		if matchTokens(alt, words, folded, b) {
			return b, true
		}
	}
	return nil, false
}

// Match is a convenience wrapper around Compile(pattern).Match(input).
func Match(pattern, input string) (Bindings, bool) {
	return Compile(pattern).Match(input)
}

// matcher matches one alternative against the input words, backtracking
// over wildcard and capture lengths. A (token, word) position that failed
// once fails every time, so it is never retried.
type matcher struct {
	toks          []token
	words, folded []string
	failed        []bool // (len(words)+1)*ti + wi
}

func matchTokens(toks []token, words, folded []string, b Bindings) bool {
	m := matcher{
		toks:   toks,
		words:  words,
		folded: folded,
		failed: make([]bool, (len(toks)+1)*(len(words)+1)),
	}
	return m.match(0, 0, b)
}

// match reports whether toks[ti:] matches words[wi:]. Captures are written
// into b only on success.
func (m *matcher) match(ti, wi int, b Bindings) bool {
	if ti == len(m.toks) {
		return wi == len(m.words)
	}
	key := ti*(len(m.words)+1) + wi
	if m.failed[key] {
		return false
	}
	if m.try(ti, wi, b) {
		return true
	}
	m.failed[key] = true
	return false
}

func (m *matcher) try(ti, wi int, b Bindings) bool {
	t := m.toks[ti]
	switch {
	case t.any:
		for n := wi; n <= len(m.words); n++ {
			if m.match(ti+1, n, b) {
				return true
			}
		}
		return false
	case t.capture != "":
		for n := wi + 1; n <= len(m.words); n++ {
			if m.match(ti+1, n, b) {
				b[t.capture] = strings.Join(m.words[wi:n], " ")
				return true
			}
		}
		return false
	default:
		if wi == len(m.words) || m.folded[wi] != t.literal {
			return false
		}
		return m.match(ti+1, wi+1, b)
	}
}

// Expand replaces every <name> in text with its binding. Unknown names are
// left as they are.
func Expand(text string, b Bindings) string {
	if len(b) == 0 || !strings.Contains(text, "<") {
		return text
	}
	var out strings.Builder
	for {
		start := strings.IndexByte(text, '<')
		if start < 0 {
			break
		}
		end := strings.IndexByte(text[start:], '>')
		if end < 0 {
			break
		}
		name := text[start+1 : start+end]
		out.WriteString(text[:start])
		if v, ok := b[name]; ok {
			out.WriteString(v)
		} else {
			out.WriteString(text[start : start+end+1])
		}
		text = text[start+end+1:]
	}
	out.WriteString(text)
	return out.String()
}

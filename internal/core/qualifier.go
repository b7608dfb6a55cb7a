package core

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"portsmith/internal/types"
)

// Qualifier is a parsed platform expression. The zero value (from an
// empty expression) always evaluates to true.
type Qualifier struct {
	root qualifierNode
}

type qualifierOp int

const (
	qualifierAtom qualifierOp = iota
	qualifierNot
	qualifierAnd
	qualifierOr
)

type qualifierNode struct {
	op       qualifierOp
	key      string
	value    string
	hasValue bool
	children []*qualifierNode
}

// platformFactKeys are the fact keys whose values may appear as bare
// identifiers, so "windows" matches os=windows.
var platformFactKeys = []string{types.FactOS, types.FactArch, types.FactLinkage, types.FactCRT}

// ParseQualifier parses a platform expression. Precedence is
// not > and > or; "!", "&" and "|" (or ",") are accepted as synonyms
// of the keywords.
func ParseQualifier(expr string) (Qualifier, error) {
	if strings.TrimSpace(expr) == "" {
		return Qualifier{}, nil
	}
	p := &qualifierParser{input: expr}
	if err := p.tokenize(); err != nil {
		return Qualifier{}, err
	}
	node, err := p.parseOr()
	if err != nil {
		return Qualifier{}, err
	}
	if p.pos < len(p.tokens) {
		return Qualifier{}, qualifierSyntaxError(expr, fmt.Sprintf("unexpected %q", p.tokens[p.pos]))
	}
	return Qualifier{root: *node}, nil
}

// EvaluateQualifier parses and evaluates expr against facts.
func EvaluateQualifier(expr string, facts types.Facts) (bool, error) {
	q, err := ParseQualifier(expr)
	if err != nil {
		return false, err
	}
	return q.Eval(facts), nil
}

func (q Qualifier) Eval(facts types.Facts) bool {
	if q.root.op == qualifierAtom && q.root.key == "" {
		return true
	}
	return q.root.eval(facts)
}

func (n *qualifierNode) eval(facts types.Facts) bool {
	switch n.op {
	case qualifierNot:
		return !n.children[0].eval(facts)
	case qualifierAnd:
		for _, child := range n.children {
			if !child.eval(facts) {
				return false
			}
		}
		return true
	case qualifierOr:
		for _, child := range n.children {
			if child.eval(facts) {
				return true
			}
		}
		return false
	default:
		return evalAtom(n, facts)
	}
}

func evalAtom(n *qualifierNode, facts types.Facts) bool {
	if n.hasValue {
		value, ok := facts[n.key]
		return ok && value == n.value
	}
	if value, ok := facts[n.key]; ok {
		if isPlatformFactKey(n.key) {
			return false
		}
		return isTruthy(value)
	}
	for _, key := range platformFactKeys {
		if facts[key] == n.key {
			return true
		}
	}
	return false
}

func isPlatformFactKey(key string) bool {
	for _, candidate := range platformFactKeys {
		if candidate == key {
			return true
		}
	}
	return false
}

func isTruthy(value string) bool {
	switch value {
	case "", "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

type qualifierParser struct {
	input  string
	tokens []string
	pos    int
}

func (p *qualifierParser) tokenize() error {
	runes := []rune(p.input)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case strings.ContainsRune("()!&|,=", r):
			p.tokens = append(p.tokens, string(r))
			i++
		case isIdentRune(r):
			start := i
			for i < len(runes) && isIdentRune(runes[i]) {
				i++
			}
			p.tokens = append(p.tokens, strings.ToLower(string(runes[start:i])))
		default:
			return qualifierSyntaxError(p.input, fmt.Sprintf("unexpected character %q", r))
		}
	}
	return nil
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '.'
}

func (p *qualifierParser) peek() string {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return ""
}

func (p *qualifierParser) parseOr() (*qualifierNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	children := []*qualifierNode{left}
	for tok := p.peek(); tok == "or" || tok == "|" || tok == ","; tok = p.peek() {
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		children = append(children, right)
	}
	if len(children) == 1 {
		return left, nil
	}
	return &qualifierNode{op: qualifierOr, children: children}, nil
}

func (p *qualifierParser) parseAnd() (*qualifierNode, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	children := []*qualifierNode{left}
	for tok := p.peek(); tok == "and" || tok == "&"; tok = p.peek() {
		p.pos++
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		children = append(children, right)
	}
	if len(children) == 1 {
		return left, nil
	}
	return &qualifierNode{op: qualifierAnd, children: children}, nil
}

func (p *qualifierParser) parseNot() (*qualifierNode, error) {
	if tok := p.peek(); tok == "not" || tok == "!" {
		p.pos++
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &qualifierNode{op: qualifierNot, children: []*qualifierNode{operand}}, nil
	}
	return p.parsePrimary()
}

func (p *qualifierParser) parsePrimary() (*qualifierNode, error) {
	tok := p.peek()
	switch tok {
	case "":
		return nil, qualifierSyntaxError(p.input, "unexpected end of expression")
	case "(":
		p.pos++
		node, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek() != ")" {
			return nil, qualifierSyntaxError(p.input, "missing ')'")
		}
		p.pos++
		return node, nil
	case ")", "!", "&", "|", ",", "=", "and", "or", "not":
		return nil, qualifierSyntaxError(p.input, fmt.Sprintf("unexpected %q", tok))
	}
	p.pos++
	if p.peek() != "=" {
		return &qualifierNode{op: qualifierAtom, key: tok}, nil
	}
	p.pos++
	value := p.peek()
	if value == "" || !isIdentRune([]rune(value)[0]) {
		return nil, qualifierSyntaxError(p.input, fmt.Sprintf("missing value for %q", tok))
	}
	p.pos++
	return &qualifierNode{op: qualifierAtom, key: tok, value: value, hasValue: true}, nil
}

func qualifierSyntaxError(expr string, detail string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("invalid platform expression %q: %s", expr, detail))
}

// QualifierCache memoizes parsed expressions for one resolution pass.
type QualifierCache struct {
	parsed map[string]Qualifier
}

func NewQualifierCache() *QualifierCache {
	return &QualifierCache{parsed: map[string]Qualifier{}}
}

func (c *QualifierCache) Evaluate(expr string, facts types.Facts) (bool, error) {
	if c == nil {
		return EvaluateQualifier(expr, facts)
	}
	q, ok := c.parsed[expr]
	if !ok {
		var err error
		q, err = ParseQualifier(expr)
		if err != nil {
			return false, err
		}
		c.parsed[expr] = q
	}
	return q.Eval(facts), nil
}

// Package expression evaluates a closed boolean expression language over an execution context.
//
// The grammar only covers literals, context paths, comparison and logical operators:
//
//	expr    = or
//	or      = and { "||" and }
//	and     = unary { "&&" unary }
//	unary   = "!" unary | compare
//	compare = operand [ ( "==" | "!=" | "===" | "!==" | ">" | "<" | ">=" | "<=" ) operand ]
//	operand = number | string | "true" | "false" | "null" | path | "(" expr ")"
//
// Nothing is ever executed; identifiers are looked up in the supplied variables.
package expression

import (
	"errors"
	"fmt"

	"github.com/dukex/classflow/pkg/template"
)

var (
	ErrSyntax            = errors.New("syntax error")
	ErrUndefinedVariable = errors.New("undefined variable")
)

// Evaluate parses and evaluates src, returning its truthiness.
func Evaluate(src string, vars map[string]any) (bool, error) {
	value, err := Eval(src, vars)
	if err != nil {
		return false, err
	}

	return Truthy(value), nil
}

// Eval parses and evaluates src, returning the resulting value.
func Eval(src string, vars map[string]any) (any, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens, vars: vars}

	value, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if tok := p.peek(); tok.kind != tokenEOF {
		return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, tok.text, tok.pos)
	}

	return value, nil
}

type parser struct {
	tokens []token
	pos    int
	vars   map[string]any
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}

	return tok
}

// Both sides are always parsed so syntax errors surface regardless of short-circuiting.
func (p *parser) parseOr() (any, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.peek().kind == tokenOr {
		p.next()

		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}

		left = Truthy(left) || Truthy(right)
	}

	return left, nil
}

func (p *parser) parseAnd() (any, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.peek().kind == tokenAnd {
		p.next()

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		left = Truthy(left) && Truthy(right)
	}

	return left, nil
}

func (p *parser) parseUnary() (any, error) {
	if p.peek().kind == tokenNot {
		p.next()

		value, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return !Truthy(value), nil
	}

	return p.parseCompare()
}

func (p *parser) parseCompare() (any, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	if p.peek().kind != tokenCompare {
		return left, nil
	}

	op := p.next().text

	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	result, ok := Compare(left, op, right)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported operator %q", ErrSyntax, op)
	}

	return result, nil
}

func (p *parser) parseOperand() (any, error) {
	tok := p.next()

	switch tok.kind {
	case tokenNumber:
		return tok.number, nil
	case tokenString:
		return tok.text, nil
	case tokenIdent:
		switch tok.text {
		case "true":
			return true, nil
		case "false":
			return false, nil
		case "null", "undefined":
			return nil, nil
		}

		value, ok := template.Lookup(p.vars, tok.text)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUndefinedVariable, tok.text)
		}

		return value, nil
	case tokenLParen:
		value, err := p.parseOr()
		if err != nil {
			return nil, err
		}

		if closing := p.next(); closing.kind != tokenRParen {
			return nil, fmt.Errorf("%w: expected ) at %d", ErrSyntax, closing.pos)
		}

		return value, nil
	case tokenEOF:
		return nil, fmt.Errorf("%w: unexpected end of expression", ErrSyntax)
	default:
		return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, tok.text, tok.pos)
	}
}

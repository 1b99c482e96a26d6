package expression

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNumber
	tokenString
	tokenIdent
	tokenCompare
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
)

type token struct {
	kind   tokenKind
	text   string
	number float64
	pos    int
}

// compareOps is ordered longest first so "===" wins over "==".
var compareOps = []string{"===", "!==", "==", "!=", ">=", "<=", ">", "<"}

func tokenize(src string) ([]token, error) {
	var tokens []token

	runes := []rune(src)
	i := 0

	for i < len(runes) {
		r := runes[i]

		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			tokens = append(tokens, token{kind: tokenLParen, text: "(", pos: i})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokenRParen, text: ")", pos: i})
			i++
		case r == '&' || r == '|':
			if i+1 >= len(runes) || runes[i+1] != r {
				return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, string(r), i)
			}

			kind := tokenAnd
			if r == '|' {
				kind = tokenOr
			}

			tokens = append(tokens, token{kind: kind, text: string([]rune{r, r}), pos: i})
			i += 2
		case r == '"' || r == '\'':
			text, end, err := readString(runes, i)
			if err != nil {
				return nil, err
			}

			tokens = append(tokens, token{kind: tokenString, text: text, pos: i})
			i = end
		case unicode.IsDigit(r) || (r == '-' && i+1 < len(runes) && unicode.IsDigit(runes[i+1]) && startsOperand(tokens)):
			start := i
			i++

			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}

			number, err := strconv.ParseFloat(string(runes[start:i]), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad number %q at %d", ErrSyntax, string(runes[start:i]), start)
			}

			tokens = append(tokens, token{kind: tokenNumber, text: string(runes[start:i]), number: number, pos: start})
		case isIdentStart(r):
			start := i
			for i < len(runes) && isIdentPart(runes[i]) {
				i++
			}

			tokens = append(tokens, token{kind: tokenIdent, text: string(runes[start:i]), pos: start})
		default:
			op := matchCompare(string(runes[i:]))
			if op != "" {
				tokens = append(tokens, token{kind: tokenCompare, text: op, pos: i})
				i += len(op)

				continue
			}

			if r == '!' {
				tokens = append(tokens, token{kind: tokenNot, text: "!", pos: i})
				i++

				continue
			}

			return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, string(r), i)
		}
	}

	return append(tokens, token{kind: tokenEOF, pos: len(runes)}), nil
}

// startsOperand reports whether a '-' at this point is a sign rather than an operator.
func startsOperand(tokens []token) bool {
	if len(tokens) == 0 {
		return true
	}

	switch tokens[len(tokens)-1].kind {
	case tokenNumber, tokenString, tokenIdent, tokenRParen:
		return false
	default:
		return true
	}
}

func matchCompare(rest string) string {
	for _, op := range compareOps {
		if strings.HasPrefix(rest, op) {
			return op
		}
	}

	return ""
}

func readString(runes []rune, start int) (string, int, error) {
	quote := runes[start]

	var b strings.Builder

	for i := start + 1; i < len(runes); i++ {
		switch runes[i] {
		case '\\':
			if i+1 < len(runes) {
				i++
				b.WriteRune(runes[i])
			}
		case quote:
			return b.String(), i + 1, nil
		default:
			b.WriteRune(runes[i])
		}
	}

	return "", 0, fmt.Errorf("%w: unterminated string at %d", ErrSyntax, start)
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r) || r == '.'
}

package search

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/seqdex/seqdex/internal/errors"
	"github.com/seqdex/seqdex/internal/index"
)

// Boolean queries compose contains-mode patterns with AND and OR
// (AND binds tighter) and parentheses. Patterns with spaces or
// operator words can be double-quoted. Example:
//
//	ACG AND (TTA OR "CGG") OR TAC
//
// Bare adjacency is an implicit AND, matching how most search boxes
// treat whitespace.

type tokenKind int

const (
	tokenPattern tokenKind = iota
	tokenAnd
	tokenOr
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	text string
}

// SearchBoolean evaluates a boolean combination of contains-mode
// patterns and returns all matching ids with score 1.0, in ascending
// id order.
func (e *Engine) SearchBoolean(ctx context.Context, query string) ([]Result, error) {
	tokens, err := tokenize(query)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyPattern, "boolean query must not be empty", nil)
	}

	rpn, err := toRPN(tokens)
	if err != nil {
		return nil, err
	}

	var results []Result
	err = e.coord.Read(func(ix *index.Builder) error {
		matched, err := evalRPN(ix, rpn)
		if err != nil {
			return err
		}
		it := matched.Iterator()
		for it.HasNext() {
			results = append(results, Result{ID: ix.IDOf(it.Next()), Score: 1.0})
		}
		return ctx.Err()
	})
	if err != nil {
		return nil, err
	}

	rank(results)
	if e.limit > 0 && len(results) > e.limit {
		results = results[:e.limit]
	}
	return results, nil
}

// containsOrdinals is the verified contains-mode candidate set for a
// normalized pattern: k-mer intersection filtered by true containment.
func containsOrdinals(ix *index.Builder, pattern string) *roaring.Bitmap {
	candidates := ix.AllOrdinals()
	if len([]rune(pattern)) >= ix.K() {
		candidates = ix.IntersectKmers(ix.Kmers(pattern))
	}

	verified := roaring.New()
	it := candidates.Iterator()
	for it.HasNext() {
		ord := it.Next()
		if strings.Contains(ix.SymbolsOf(ord), pattern) {
			verified.Add(ord)
		}
	}
	return verified
}

func tokenize(query string) ([]token, error) {
	var tokens []token
	runes := []rune(query)

	flush := func(word string) {
		switch strings.ToUpper(word) {
		case "":
		case "AND":
			tokens = append(tokens, token{kind: tokenAnd})
		case "OR":
			tokens = append(tokens, token{kind: tokenOr})
		default:
			tokens = append(tokens, token{kind: tokenPattern, text: word})
		}
	}

	var word strings.Builder
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"':
			flush(word.String())
			word.Reset()
			end := -1
			for j := i + 1; j < len(runes); j++ {
				if runes[j] == '"' {
					end = j
					break
				}
			}
			if end < 0 {
				return nil, errors.InvalidInput("unterminated quote in boolean query")
			}
			tokens = append(tokens, token{kind: tokenPattern, text: string(runes[i+1 : end])})
			i = end
		case r == '(':
			flush(word.String())
			word.Reset()
			tokens = append(tokens, token{kind: tokenLParen})
		case r == ')':
			flush(word.String())
			word.Reset()
			tokens = append(tokens, token{kind: tokenRParen})
		case unicode.IsSpace(r):
			flush(word.String())
			word.Reset()
		default:
			word.WriteRune(r)
		}
	}
	flush(word.String())

	return insertImplicitAnd(tokens), nil
}

// insertImplicitAnd turns bare adjacency of operands into AND, so
// "ACG TTA" means "ACG AND TTA".
func insertImplicitAnd(tokens []token) []token {
	out := make([]token, 0, len(tokens))
	for i, t := range tokens {
		if i > 0 {
			prev := tokens[i-1]
			startsOperand := t.kind == tokenPattern || t.kind == tokenLParen
			endsOperand := prev.kind == tokenPattern || prev.kind == tokenRParen
			if startsOperand && endsOperand {
				out = append(out, token{kind: tokenAnd})
			}
		}
		out = append(out, t)
	}
	return out
}

// toRPN is the shunting-yard conversion. AND outranks OR; both are
// left-associative.
func toRPN(tokens []token) ([]token, error) {
	precedence := map[tokenKind]int{tokenAnd: 2, tokenOr: 1}

	var output, ops []token
	for _, t := range tokens {
		switch t.kind {
		case tokenPattern:
			output = append(output, t)
		case tokenAnd, tokenOr:
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				if top.kind == tokenLParen || precedence[top.kind] < precedence[t.kind] {
					break
				}
				output = append(output, top)
				ops = ops[:len(ops)-1]
			}
			ops = append(ops, t)
		case tokenLParen:
			ops = append(ops, t)
		case tokenRParen:
			matched := false
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				ops = ops[:len(ops)-1]
				if top.kind == tokenLParen {
					matched = true
					break
				}
				output = append(output, top)
			}
			if !matched {
				return nil, errors.InvalidInput("unbalanced parenthesis in boolean query")
			}
		}
	}
	for len(ops) > 0 {
		top := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		if top.kind == tokenLParen {
			return nil, errors.InvalidInput("unbalanced parenthesis in boolean query")
		}
		output = append(output, top)
	}
	return output, nil
}

func evalRPN(ix *index.Builder, rpn []token) (*roaring.Bitmap, error) {
	var stack []*roaring.Bitmap
	for _, t := range rpn {
		switch t.kind {
		case tokenPattern:
			if t.text == "" {
				return nil, errors.New(errors.ErrCodeEmptyPattern, "boolean query operand must not be empty", nil)
			}
			stack = append(stack, containsOrdinals(ix, ix.Normalize(t.text)))
		case tokenAnd, tokenOr:
			if len(stack) < 2 {
				return nil, errors.InvalidInput("malformed boolean query: operator missing operand")
			}
			right := stack[len(stack)-1]
			left := stack[len(stack)-2]
			stack = stack[:len(stack)-2]
			if t.kind == tokenAnd {
				left.And(right)
			} else {
				left.Or(right)
			}
			stack = append(stack, left)
		default:
			return nil, errors.InvalidInput(fmt.Sprintf("unexpected token in boolean query: %v", t.kind))
		}
	}
	if len(stack) != 1 {
		return nil, errors.InvalidInput("malformed boolean query")
	}
	return stack[0], nil
}

// Package cql implements a small query expression language for debug entity
// searches: WITH(name), WITHOUT(name), ALL(), negation with !, grouping with
// parentheses, and & / | composition. Expressions compile to filter trees.
package cql

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/rotisserie/eris"

	"github.com/Jonster5/raxis/filter"
	"github.com/Jonster5/raxis/types"
)

type cqlOperator int

const (
	opAnd cqlOperator = iota
	opOr
)

var operatorMap = map[string]cqlOperator{"&": opAnd, "|": opOr}

// Capture tells the parser library how to transform a parsed string token
// into the operator type.
func (o *cqlOperator) Capture(s []string) error {
	if len(s) == 0 {
		return eris.New("invalid operator")
	}
	operator, ok := operatorMap[s[0]]
	if !ok {
		return eris.New("invalid operator")
	}
	*o = operator
	return nil
}

type cqlComponent struct {
	Name string `parser:"@Ident"`
}

type cqlAll struct{}

func (a *cqlAll) Capture(values []string) error {
	if values[0] == "ALL" && values[1] == "(" && values[2] == ")" {
		*a = cqlAll{}
	}
	return nil
}

type cqlNot struct {
	SubExpression *cqlValue `parser:"\"!\" @@"`
}

type cqlWith struct {
	Component *cqlComponent `parser:"\"WITH\" \"(\" @@ \")\""`
}

type cqlWithout struct {
	Component *cqlComponent `parser:"\"WITHOUT\" \"(\" @@ \")\""`
}

type cqlValue struct {
	All           *cqlAll     `parser:"@(\"ALL\" \"(\" \")\")"`
	With          *cqlWith    `parser:"| @@"`
	Without       *cqlWithout `parser:"| @@"`
	Not           *cqlNot     `parser:"| @@"`
	Subexpression *cqlTerm    `parser:"| \"(\" @@ \")\""`
}

type cqlFactor struct {
	Base *cqlValue `parser:"@@"`
}

type cqlOpFactor struct {
	Operator cqlOperator `parser:"@(\"&\" | \"|\")"`
	Factor   *cqlFactor  `parser:"@@"`
}

type cqlTerm struct {
	Left  *cqlFactor     `parser:"@@"`
	Right []*cqlOpFactor `parser:"@@*"`
}

// Display

func (o cqlOperator) String() string {
	switch o {
	case opAnd:
		return "&"
	case opOr:
		return "|"
	}
	panic("unsupported operator")
}

func (a *cqlAll) String() string {
	return "ALL()"
}

func (w *cqlWith) String() string {
	return "WITH(" + w.Component.Name + ")"
}

func (w *cqlWithout) String() string {
	return "WITHOUT(" + w.Component.Name + ")"
}

func (v *cqlValue) String() string {
	switch {
	case v.With != nil:
		return v.With.String()
	case v.Without != nil:
		return v.Without.String()
	case v.All != nil:
		return v.All.String()
	case v.Not != nil:
		return "!(" + v.Not.SubExpression.String() + ")"
	case v.Subexpression != nil:
		return "(" + v.Subexpression.String() + ")"
	}
	panic("logic error displaying CQL ast. Check the code in cql.go")
}

func (f *cqlFactor) String() string {
	return f.Base.String()
}

func (o *cqlOpFactor) String() string {
	return fmt.Sprintf("%s %s", o.Operator, o.Factor)
}

func (t *cqlTerm) String() string {
	out := []string{t.Left.String()}
	for _, r := range t.Right {
		out = append(out, r.String())
	}
	return strings.Join(out, " ")
}

var internalCQLParser = participle.MustBuild[cqlTerm]()

type componentResolver func(string) (types.ComponentMetadata, error)

func valueToComponentFilter(value *cqlValue, stringToComponent componentResolver) (
	filter.ComponentFilter, error,
) {
	switch {
	case value.Not != nil:
		resultFilter, err := valueToComponentFilter(value.Not.SubExpression, stringToComponent)
		if err != nil {
			return nil, err
		}
		return filter.Not(resultFilter), nil
	case value.With != nil:
		comp, err := stringToComponent(value.With.Component.Name)
		if err != nil {
			return nil, eris.Wrap(err, "")
		}
		return filter.WithComponent(comp), nil
	case value.Without != nil:
		comp, err := stringToComponent(value.Without.Component.Name)
		if err != nil {
			return nil, eris.Wrap(err, "")
		}
		return filter.WithoutComponent(comp), nil
	case value.All != nil:
		return filter.All(), nil
	case value.Subexpression != nil:
		return termToComponentFilter(value.Subexpression, stringToComponent)
	}
	return nil, eris.New("unknown error during conversion from CQL AST to ComponentFilter")
}

func factorToComponentFilter(factor *cqlFactor, stringToComponent componentResolver) (
	filter.ComponentFilter, error,
) {
	return valueToComponentFilter(factor.Base, stringToComponent)
}

func termToComponentFilter(term *cqlTerm, stringToComponent componentResolver) (
	filter.ComponentFilter, error,
) {
	if term.Left == nil {
		return nil, eris.New("not enough values in expression")
	}
	acc, err := factorToComponentFilter(term.Left, stringToComponent)
	if err != nil {
		return nil, err
	}
	for _, opFactor := range term.Right {
		resultFilter, err := factorToComponentFilter(opFactor.Factor, stringToComponent)
		if err != nil {
			return nil, err
		}
		switch opFactor.Operator {
		case opAnd:
			acc = filter.And(acc, resultFilter)
		case opOr:
			acc = filter.Or(acc, resultFilter)
		default:
			return nil, eris.New("invalid operator")
		}
	}
	return acc, nil
}

// Parse compiles a CQL expression into a filter, resolving component names
// through the given lookup.
func Parse(cqlText string, stringToComponent func(string) (types.ComponentMetadata, error)) (
	filter.ComponentFilter, error,
) {
	term, err := internalCQLParser.ParseString("", cqlText)
	if err != nil {
		return nil, eris.Wrap(err, "")
	}
	return termToComponentFilter(term, componentResolver(stringToComponent))
}

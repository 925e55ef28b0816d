package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gitrdm/dioph/pkg/dioph"
	"github.com/gitrdm/dioph/pkg/refsolver"
)

// instruction is one parsed directive, replayed against a RefLRA only
// after it has been wired to its paired Engine — terms added before that
// wiring would have their NotifyAddTerm call silently dropped.
type instruction func(p *problem)

// problem is a parsed input file: a handful of plain variables and terms
// with bounds, in the tiny line-oriented format parseProblem reads.
//
//	var x int
//	var y int
//	bound x 0 10
//	term t int 2*x 3*y
//	bound t 1 1
//
// Each term line's coefficients are space-separated "coeff*var" pairs.
// Bounds are inclusive; a bound field may be "-inf" or "+inf" to leave
// that side open.
type problem struct {
	names        map[string]dioph.ColumnID
	nextCol      dioph.ColumnID
	instructions []instruction
	solver       *refsolver.RefLRA
}

func newProblem() *problem {
	return &problem{names: make(map[string]dioph.ColumnID)}
}

func (p *problem) col(name string) (dioph.ColumnID, bool) {
	c, ok := p.names[name]
	return c, ok
}

func (p *problem) declare(name string) dioph.ColumnID {
	c := p.nextCol
	p.nextCol++
	p.names[name] = c
	return c
}

// Build constructs a fresh RefLRA and its paired Engine, then replays
// every parsed directive against the solver in file order — so term
// additions and bound installs are observed by the engine as they
// happen, exactly as a real LRA theory would report them incrementally.
func (p *problem) Build(settings dioph.Settings) (*dioph.Engine, *refsolver.RefLRA) {
	p.solver = refsolver.New()
	engine := dioph.NewEngine(p.solver, settings)
	p.solver.SetEngine(engine)
	for _, ins := range p.instructions {
		ins(p)
	}
	return engine, p.solver
}

func parseProblem(r io.Reader) (*problem, error) {
	p := newProblem()
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "var":
			if len(fields) < 3 {
				return nil, fmt.Errorf("line %d: want 'var NAME int|real'", lineNo)
			}
			name, kind := fields[1], fields[2]
			if _, exists := p.col(name); exists {
				return nil, fmt.Errorf("line %d: %s already declared", lineNo, name)
			}
			c := p.declare(name)
			isInt := kind == "int"
			p.instructions = append(p.instructions, func(p *problem) {
				p.solver.AddVar(c, isInt)
			})

		case "term":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: want 'term NAME int|real coeff*var ...'", lineNo)
			}
			name, kind := fields[1], fields[2]
			if _, exists := p.col(name); exists {
				return nil, fmt.Errorf("line %d: %s already declared", lineNo, name)
			}
			var mono []dioph.Monomial
			for _, tok := range fields[3:] {
				parts := strings.SplitN(tok, "*", 2)
				if len(parts) != 2 {
					return nil, fmt.Errorf("line %d: bad monomial %q, want coeff*var", lineNo, tok)
				}
				coeff, err := strconv.ParseInt(parts[0], 10, 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: bad coefficient in %q: %w", lineNo, tok, err)
				}
				vcol, ok := p.col(parts[1])
				if !ok {
					return nil, fmt.Errorf("line %d: unknown variable %q", lineNo, parts[1])
				}
				mono = append(mono, dioph.Monomial{Col: vcol, Coeff: dioph.FromInt64(coeff)})
			}
			c := p.declare(name)
			isInt := kind == "int"
			p.instructions = append(p.instructions, func(p *problem) {
				p.solver.AddTerm(c, isInt, mono)
			})

		case "bound":
			if len(fields) != 4 {
				return nil, fmt.Errorf("line %d: want 'bound NAME lower upper'", lineNo)
			}
			c, ok := p.col(fields[1])
			if !ok {
				return nil, fmt.Errorf("line %d: unknown variable %q", lineNo, fields[1])
			}
			if fields[2] != "-inf" {
				v, err := parseQ(fields[2])
				if err != nil {
					return nil, fmt.Errorf("line %d: bad lower bound: %w", lineNo, err)
				}
				p.instructions = append(p.instructions, func(p *problem) {
					p.solver.SetBound(c, dioph.Lower, v)
				})
			}
			if fields[3] != "+inf" {
				v, err := parseQ(fields[3])
				if err != nil {
					return nil, fmt.Errorf("line %d: bad upper bound: %w", lineNo, err)
				}
				p.instructions = append(p.instructions, func(p *problem) {
					p.solver.SetBound(c, dioph.Upper, v)
				})
			}

		default:
			return nil, fmt.Errorf("line %d: unknown directive %q", lineNo, fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

func parseQ(s string) (dioph.Q, error) {
	if strings.Contains(s, "/") {
		parts := strings.SplitN(s, "/", 2)
		num, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return dioph.Q{}, err
		}
		den, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return dioph.Q{}, err
		}
		return dioph.FromFrac(num, den), nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return dioph.Q{}, err
	}
	return dioph.FromInt64(n), nil
}

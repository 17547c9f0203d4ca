package table

import (
	"math"
	"strconv"

	"github.com/mesh-intelligence/etable/internal/strutil"
)

// precedence ranks operators; higher binds tighter. Equal ranks are applied
// left to right, so ^ is left-associative: =2^3^2 is (2^3)^2.
func precedence(op byte) int {
	switch op {
	case '^':
		return 4
	case '*', '/':
		return 3
	default:
		return 2
	}
}

// evaluator holds the operand and operator stacks of one evaluation.
type evaluator struct {
	table *Table
	nums  []float64
	ops   []byte
}

// CalculateFormula evaluates an infix formula of numbers and cell references
// using the shunting-yard algorithm in a single left-to-right pass. It
// returns ErrDivisionByZero when a divisor is within 0.001 of zero and
// ErrInvalidType when formula is not a formula.
func (t *Table) CalculateFormula(formula string) (float64, error) {
	if !strutil.IsFormula(formula) {
		return 0, ErrInvalidType
	}

	e := &evaluator{table: t}
	pos := 1
	for i := 1; i < len(formula); i++ {
		ch := formula[i]
		if !strutil.IsMathOperator(ch) {
			continue
		}

		e.pushOperand(formula[pos:i])
		pos = i + 1

		if err := e.drain(precedence(ch)); err != nil {
			return 0, err
		}
		e.ops = append(e.ops, ch)
	}

	e.pushOperand(formula[pos:])
	if err := e.drain(0); err != nil {
		return 0, err
	}

	return e.nums[len(e.nums)-1], nil
}

// pushOperand resolves a reference or parses a literal onto the operand
// stack.
func (e *evaluator) pushOperand(token string) {
	var v float64
	if token[0] == 'R' {
		v = e.table.EvaluateReference(token)
	} else {
		v, _ = strconv.ParseFloat(token, 64)
	}
	e.nums = append(e.nums, v)
}

// drain applies stacked operators while the top one has precedence at least
// minPrec.
func (e *evaluator) drain(minPrec int) error {
	for len(e.ops) > 0 && precedence(e.ops[len(e.ops)-1]) >= minPrec {
		if err := e.apply(); err != nil {
			return err
		}
	}
	return nil
}

// apply pops one operator and two operands and pushes the result.
func (e *evaluator) apply() error {
	op := e.ops[len(e.ops)-1]
	e.ops = e.ops[:len(e.ops)-1]

	n := len(e.nums)
	x, y := e.nums[n-2], e.nums[n-1]
	e.nums = e.nums[:n-2]

	var result float64
	switch op {
	case '+':
		result = x + y
	case '-':
		result = x - y
	case '*':
		result = x * y
	case '/':
		if math.Abs(y) < tolerance {
			return ErrDivisionByZero
		}
		result = x / y
	case '^':
		result = math.Pow(x, y)
	}

	e.nums = append(e.nums, result)
	return nil
}

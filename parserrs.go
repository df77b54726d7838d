package formula

import "strconv"

// OperatorError is an error indicating an operator symbol that is not
// registered.
type OperatorError struct {
	// Operator is the symbol that was not found.
	Operator string
}

func (err *OperatorError) Error() string {
	return "operator " + strconv.Quote(err.Operator) + " is not registered"
}

// BracketError is an error indicating mismatched parentheses in the input.
// It implements InputError.
type BracketError struct {
	// Col is the position of the unmatched bracket.
	Col int
	// Left is the unclosed opening bracket, if any.
	Left string
	// Right is the closing bracket with no opening bracket, if any.
	Right string
}

func (err *BracketError) Error() string {
	if err.Left == "" {
		return errpos(err.Col, "close bracket "+err.Right+" with no open bracket")
	}
	return errpos(err.Col, "open bracket "+err.Left+" with no close bracket")
}

func (err *BracketError) Pos() int {
	return err.Col
}

// FormulaError is an error indicating that the tokens of a formula do not
// form a single expression: an operator is missing operands, or operands are
// left over with no operator to combine them.
type FormulaError struct {
	// Formula is the source text.
	Formula string
	// Operator is the operator that was missing operands, if any.
	Operator string
	// Col is the position of Operator, or 0 if Operator is empty.
	Col int
	// Values is the number of values that remained when the formula was
	// otherwise complete.
	Values int
}

func (err *FormulaError) Error() string {
	msg := "cannot build formula " + strconv.Quote(err.Formula)
	switch {
	case err.Operator != "":
		return errpos(err.Col, msg+": missing operand for "+strconv.Quote(err.Operator))
	case err.Values == 0:
		return msg + ": no expression"
	default:
		return msg + ": " + strconv.Itoa(err.Values) + " values with no operator to combine them"
	}
}

func (err *FormulaError) Pos() int {
	return err.Col
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting
// from malformed formula text implements InputError.
type InputError interface {
	error
	// Pos returns the position of the error as the number of runes up to
	// and including the start of the token that caused the error, or 0 if
	// the error concerns the whole formula.
	Pos() int
}

var (
	_ InputError = (*BracketError)(nil)
	_ InputError = (*FormulaError)(nil)
)

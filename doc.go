// Package formula implements an embeddable calculator for small math, boolean,
// and bitwise formulas over float64 values.
//
// A formula such as "sqrt 4+3*4" or "$player.Health / $player.MaxHealth" is
// compiled once into an expression tree and evaluated against the variables
// of an Interpreter. Operators may be written infix ("a + b", "a add b") or as
// calls ("add(a, b)", "add a b"); commas are optional. Words like sqrt and min
// are functions that bind tighter than any infix arithmetic, so "sqrt 4+3*4"
// is 14 and "(sqrt 4+3)*4" is 20.
//
// Booleans are the values 1 (true) and 0 (false). Logical operators treat
// only 1 as true.
//
// Variables are found in three places, in order: the interpreter's local
// variables, named contexts for dotted references like $world.width, and
// global variables shared by all interpreters. Compiled formulas are kept in
// a bounded cache shared by all interpreters, so calculating the same text
// repeatedly does not parse it again.
package formula

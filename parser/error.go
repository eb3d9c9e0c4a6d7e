package parser

import "fmt"

// ErrorKind classifies a grammar violation.
type ErrorKind string

const (
	UnexpectedToken        ErrorKind = "UnexpectedToken"
	UnterminatedBlock      ErrorKind = "UnterminatedBlock"
	UnterminatedCommand    ErrorKind = "UnterminatedCommand"
	BadSetTarget           ErrorKind = "BadSetTarget"
	BadBracketArity        ErrorKind = "BadBracketArity"
	BadCommandDefinitionArg ErrorKind = "BadCommandDefinitionArg"
	BadArithmetic          ErrorKind = "BadArithmetic"
)

// ParseError is every fault the parser can raise.
type ParseError struct {
	Kind         ErrorKind
	Line, Column int
	Detail       string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at %d:%d: %s", e.Kind, e.Line, e.Column, e.Detail)
}

package rsmodel

import (
	"fmt"
	"strings"
	"text/scanner"
)

// SyntaxError reports a malformed source at a line and column.
type SyntaxError struct {
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}

type token struct {
	tok  rune
	text string
	line int
	col  int
}

func (t token) is(text string) bool {
	return t.tok != scanner.EOF && t.text == text
}

func (t token) describe() string {
	switch t.tok {
	case scanner.EOF:
		return "end of file"
	case scanner.Ident:
		return fmt.Sprintf("identifier %q", t.text)
	default:
		return fmt.Sprintf("%q", t.text)
	}
}

// tokenize splits src into tokens. Punctuation comes out one rune per token;
// the parser joins "->" and "::" itself.
func tokenize(src string) ([]token, error) {
	var s scanner.Scanner
	s.Init(strings.NewReader(src))
	s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats |
		scanner.ScanStrings | scanner.ScanComments | scanner.SkipComments
	s.Filename = ""

	var scanErr *SyntaxError
	s.Error = func(s *scanner.Scanner, msg string) {
		if scanErr == nil {
			pos := s.Pos()
			scanErr = &SyntaxError{Line: pos.Line, Column: pos.Column, Msg: msg}
		}
	}

	var toks []token
	for tok := s.Scan(); tok != scanner.EOF; tok = s.Scan() {
		if scanErr != nil {
			return nil, scanErr
		}
		toks = append(toks, token{
			tok:  tok,
			text: s.TokenText(),
			line: s.Position.Line,
			col:  s.Position.Column,
		})
	}
	if scanErr != nil {
		return nil, scanErr
	}

	pos := s.Pos()
	toks = append(toks, token{tok: scanner.EOF, line: pos.Line, col: pos.Column})
	return toks, nil
}

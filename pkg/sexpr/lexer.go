package sexpr

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"unicode"
)

// TokenType is the kind of a lexical token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenLeftParen
	TokenRightParen
	TokenSymbol
	TokenString
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "end of file"
	case TokenLeftParen:
		return "'('"
	case TokenRightParen:
		return "')'"
	case TokenSymbol:
		return "symbol"
	case TokenString:
		return "string"
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Pos is a 1-based position in a deck file
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("line %d col %d", p.Line, p.Col)
}

// SyntaxError reports malformed input at the position where the offending
// token starts.
type SyntaxError struct {
	Pos Pos
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

func syntaxErrorf(pos Pos, format string, args ...any) error {
	return &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Token is one lexical token and where it starts
type Token struct {
	Type  TokenType
	Value string
	Pos   Pos
}

// Lexer splits a deck into tokens. Comments run from '#' or ';' to the end
// of the line.
type Lexer struct {
	r   *bufio.Reader
	pos Pos

	// column before the last newline, so unread can step back over it
	prevCol int
}

// NewLexer creates a lexer reading from r
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{r: bufio.NewReader(r), pos: Pos{Line: 1, Col: 1}}
}

func (l *Lexer) next() (rune, error) {
	ch, _, err := l.r.ReadRune()
	if err != nil {
		return 0, err
	}
	if ch == '\n' {
		l.prevCol = l.pos.Col
		l.pos.Line++
		l.pos.Col = 1
	} else {
		l.pos.Col++
	}
	return ch, nil
}

func (l *Lexer) unread(ch rune) {
	_ = l.r.UnreadRune()
	if ch == '\n' {
		l.pos.Line--
		l.pos.Col = l.prevCol
	} else {
		l.pos.Col--
	}
}

// skip consumes whitespace and comments
func (l *Lexer) skip() error {
	comment := false
	for {
		ch, err := l.next()
		if err != nil {
			return err
		}
		switch {
		case comment:
			comment = ch != '\n'
		case ch == '#' || ch == ';':
			comment = true
		case !unicode.IsSpace(ch):
			l.unread(ch)
			return nil
		}
	}
}

// NextToken returns the next token, or a TokenEOF token at the end of input
func (l *Lexer) NextToken() (Token, error) {
	if err := l.skip(); err != nil {
		if errors.Is(err, io.EOF) {
			return Token{Type: TokenEOF, Pos: l.pos}, nil
		}
		return Token{}, err
	}

	start := l.pos
	ch, err := l.next()
	if err != nil {
		return Token{}, err
	}
	switch ch {
	case '(':
		return Token{Type: TokenLeftParen, Value: "(", Pos: start}, nil
	case ')':
		return Token{Type: TokenRightParen, Value: ")", Pos: start}, nil
	case '"':
		return l.quoted(start)
	}
	l.unread(ch)
	return l.symbol(start)
}

// quoted reads the rest of a string whose opening quote is at start.
// Supported escapes are \n, \t, \" and \\.
func (l *Lexer) quoted(start Pos) (Token, error) {
	var text []rune
	for {
		at := l.pos
		ch, err := l.next()
		if errors.Is(err, io.EOF) {
			return Token{}, syntaxErrorf(start, "unexpected EOF in string")
		}
		if err != nil {
			return Token{}, err
		}
		switch ch {
		case '"':
			return Token{Type: TokenString, Value: string(text), Pos: start}, nil
		case '\\':
			esc, err := l.next()
			if err != nil {
				return Token{}, syntaxErrorf(start, "unexpected EOF in string")
			}
			switch esc {
			case 'n':
				text = append(text, '\n')
			case 't':
				text = append(text, '\t')
			case '"', '\\':
				text = append(text, esc)
			default:
				return Token{}, syntaxErrorf(at, "unknown escape \\%c", esc)
			}
		default:
			text = append(text, ch)
		}
	}
}

// symbol reads a bare atom such as a key, a number or a flag
func (l *Lexer) symbol(start Pos) (Token, error) {
	var text []rune
	for {
		ch, err := l.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Token{}, err
		}
		if unicode.IsSpace(ch) || ch == '(' || ch == ')' || ch == '"' || ch == ';' {
			l.unread(ch)
			break
		}
		text = append(text, ch)
	}
	return Token{Type: TokenSymbol, Value: string(text), Pos: start}, nil
}

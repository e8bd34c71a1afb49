package pattern

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokenIRI tokenKind = iota
	tokenLiteral
	tokenVar
	tokenWord
	tokenPunct
)

// token is one lexical unit. Literal tokens absorb their @lang or ^^datatype
// suffix so the parser sees a single unit per literal.
type token struct {
	kind          tokenKind
	text          string
	language      string
	datatype      string
	datatypeIsIRI bool
}

type lexer struct {
	input string
	pos   int
}

func lex(input string) ([]token, error) {
	l := &lexer{input: input}
	var tokens []token
	for {
		tok, ok, err := l.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

func (l *lexer) next() (token, bool, error) {
	l.skipSpace()
	if l.pos >= len(l.input) {
		return token{}, false, nil
	}

	switch c := l.input[l.pos]; c {
	case '<':
		text, err := l.readUntil('>')
		if err != nil {
			return token{}, false, err
		}
		return token{kind: tokenIRI, text: text}, true, nil

	case '"':
		return l.readLiteral()

	case '?', '$':
		l.pos++
		name := l.readWhile(isNameByte)
		if name == "" {
			return token{}, false, fmt.Errorf("empty variable name at offset %d", l.pos)
		}
		return token{kind: tokenVar, text: name}, true, nil

	case '{', '}', '.', '*':
		l.pos++
		return token{kind: tokenPunct, text: string(c)}, true, nil
	}

	word := l.readWhile(isWordByte)
	if word == "" {
		return token{}, false, fmt.Errorf("unexpected character %q at offset %d", l.input[l.pos], l.pos)
	}
	return token{kind: tokenWord, text: word}, true, nil
}

func (l *lexer) readLiteral() (token, bool, error) {
	l.pos++ // opening quote
	var b strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch c {
		case '\\':
			if l.pos+1 >= len(l.input) {
				return token{}, false, fmt.Errorf("unterminated escape in literal")
			}
			l.pos++
			switch l.input[l.pos] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(l.input[l.pos])
			}
			l.pos++
		case '"':
			l.pos++
			return l.literalSuffix(b.String())
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
	return token{}, false, fmt.Errorf("unterminated literal")
}

func (l *lexer) literalSuffix(value string) (token, bool, error) {
	tok := token{kind: tokenLiteral, text: value}

	if l.pos < len(l.input) && l.input[l.pos] == '@' {
		l.pos++
		tok.language = l.readWhile(func(c byte) bool {
			return c == '-' || isNameByte(c)
		})
		if tok.language == "" {
			return token{}, false, fmt.Errorf("empty language tag")
		}
		return tok, true, nil
	}

	if strings.HasPrefix(l.input[l.pos:], "^^") {
		l.pos += 2
		if l.pos < len(l.input) && l.input[l.pos] == '<' {
			datatype, err := l.readUntil('>')
			if err != nil {
				return token{}, false, err
			}
			tok.datatype = datatype
			tok.datatypeIsIRI = true
			return tok, true, nil
		}
		tok.datatype = l.readWhile(isWordByte)
		if tok.datatype == "" {
			return token{}, false, fmt.Errorf("missing datatype after ^^")
		}
		return tok, true, nil
	}

	return tok, true, nil
}

// readUntil consumes the opening delimiter's counterpart, returning the text
// between the current position's byte and the terminator.
func (l *lexer) readUntil(end byte) (string, error) {
	start := l.pos + 1
	for i := start; i < len(l.input); i++ {
		if l.input[i] == end {
			l.pos = i + 1
			return l.input[start:i], nil
		}
	}
	return "", fmt.Errorf("missing closing %q", string(end))
}

func (l *lexer) readWhile(valid func(byte) bool) string {
	start := l.pos
	for l.pos < len(l.input) && valid(l.input[l.pos]) {
		l.pos++
	}
	return l.input[start:l.pos]
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == '#' {
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
			continue
		}
		if !unicode.IsSpace(rune(c)) {
			return
		}
		l.pos++
	}
}

func isNameByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// isWordByte accepts prefixed-name and keyword characters. Anything that
// starts another token kind or closes a group terminates the word.
func isWordByte(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '{', '}', '<', '>', '"', '?', '$', '*', '#':
		return false
	case '.':
		return false
	}
	return !unicode.IsSpace(rune(c))
}

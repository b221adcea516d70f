package dub

import (
	"fmt"
	"strconv"
)

type Node interface {
	isNode()
}

func (Identifier) isNode() {}
func (Int) isNode()        {}
func (Float) isNode()      {}
func (String) isNode()     {}
func (MatchExpr) isNode()  {}

type Command struct {
	Name Identifier
	Args []Node
}

type Identifier string
type Int int
type Float float64
type String string
type MatchExpr struct {
	divisions []division
}

func Parse(input string) (Command, error) {
	tokens, err := lex(input)
	if err != nil {
		return Command{}, err
	}
	p := parser{tokens: tokens}
	return p.parse()
}

type parser struct {
	pos    int
	tokens []token
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	p.pos++
	return t
}

func (p *parser) peek() token {
	t := p.next()
	p.pos--
	return t
}

func (p *parser) backup() {
	p.pos--
}

func (p *parser) parse() (Command, error) {
	var cmd Command
	token := p.next()
	if token.typ != typeIdentifier {
		return cmd, unexpected(token)
	}
	cmd.Name = Identifier(token.text)
	for token := p.next(); token.typ != typeEOF; token = p.next() {
		var arg Node
		switch token.typ {
		case typeIdentifier:
			arg = Identifier(token.text)
		case typeString:
			arg = String(token.text[1 : len(token.text)-1])
		case typeFloat:
			f, err := strconv.ParseFloat(token.text, 64)
			if err != nil {
				return cmd, err
			}
			arg = Float(f)
		case typeInt:
			n, err := strconv.Atoi(token.text)
			if err != nil {
				return cmd, err
			}
			arg = Int(n)
		case typeQuote:
			matchExpr, err := p.matchExpr(p.next())
			if err != nil {
				return cmd, err
			}
			arg = matchExpr
		default:
			return cmd, unexpected(token)
		}
		cmd.Args = append(cmd.Args, arg)
	}
	return cmd, nil
}

func (p *parser) matchExpr(start token) (MatchExpr, error) {
	match := MatchExpr{}
	current := division{}

	for token := start; token.typ != typeEOF; token = p.next() {
		switch token.typ {
		case typeInt:
			switch next := p.peek(); next.typ {
			case typeComma, typeSlash, typeEOF:
				list, err := p.pickList(token)
				if err != nil {
					return match, err
				}
				current.sel = list
			case typeColon:
				p.next()
				start, err := strconv.Atoi(token.text)
				if err != nil {
					return match, err
				}
				t := p.next()
				if t.typ != typeInt {
					return match, unexpected(t)
				}
				end, err := strconv.Atoi(t.text)
				if err != nil {
					return match, err
				}
				current.sel = span{from: start, to: end}
			default:
				return match, unexpected(token)
			}
		case typeAsterisk:
			current.sel = anyNote
		default:
			return match, unexpected(token)
		}

		if p.peek().typ == typeSlash {
			match.divisions = append(match.divisions, current)
			current = division{level: current.level + 1}
			p.next()
		}
		for p.peek().typ == typeSlash {
			p.next()
			current.level++
		}
	}

	p.backup()
	match.divisions = append(match.divisions, current)
	return match, nil
}

func (p *parser) pickList(start token) (picks, error) {
	var list picks
	current := start
	for {
		switch current.typ {
		case typeInt:
			n, err := strconv.Atoi(current.text)
			if err != nil {
				return list, err
			}
			list = append(list, n)
		case typeComma: // ignore
		default:
			p.backup()
			if current.typ != typeEOF && current.typ != typeSlash {
				return list, unexpected(current)
			}
			return list, nil
		}
		current = p.next()
	}
}

func unexpected(t token) error {
	if t.typ == typeEOF {
		return &SyntaxError{Pos: t.pos, Msg: "unexpected end of input"}
	}
	return &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected token %q", t.text)}
}

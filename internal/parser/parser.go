package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/custard-lang/custard-sub000/internal/ast"
	"github.com/custard-lang/custard-sub000/internal/diagnostics"
	"github.com/custard-lang/custard-sub000/internal/lexer"
	"github.com/custard-lang/custard-sub000/internal/token"
)

// MaxRecursionDepth bounds nesting so hostile input cannot exhaust the stack.
const MaxRecursionDepth = 1000

// Input is one unit of source text handed to the reader.
type Input struct {
	Path      string
	Contents  string
	StartLine int
}

type Parser struct {
	l         *lexer.Lexer
	curToken  token.Token
	peekToken token.Token
	depth     int
}

// New primes the parser with two tokens. The returned error is the first
// lexical error, if any.
func New(in Input) (*Parser, error) {
	p := &Parser{l: lexer.New(in.Path, in.Contents, in.StartLine)}
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) nextToken() error {
	p.curToken = p.peekToken
	tok, err := p.l.NextToken()
	if err != nil {
		return err
	}
	p.peekToken = tok
	return nil
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

// ReadStr reads exactly one form; anything after it is an error.
func ReadStr(in Input) (ast.Form, error) {
	p, err := New(in)
	if err != nil {
		return nil, err
	}
	if p.curTokenIs(token.EOF) {
		return nil, diagnostics.NewParseError(diagnostics.ErrP001, p.curToken.Location, "a form", p.curToken.String())
	}
	form, err := p.parseForm()
	if err != nil {
		return nil, err
	}
	if !p.curTokenIs(token.EOF) {
		return nil, diagnostics.NewParseError(diagnostics.ErrP004, p.curToken.Location, "end of input", p.curToken.String())
	}
	return form, nil
}

// ReadBlock reads forms until the end of input.
func ReadBlock(in Input) (*ast.Block, error) {
	p, err := New(in)
	if err != nil {
		return nil, err
	}
	block := &ast.Block{File: in.Path}
	for !p.curTokenIs(token.EOF) {
		form, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		block.Forms = append(block.Forms, form)
	}
	return block, nil
}

// parseForm parses the form starting at curToken and leaves curToken on
// the token following it.
func (p *Parser) parseForm() (ast.Form, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > MaxRecursionDepth {
		return nil, diagnostics.NewParseError(diagnostics.ErrP001, p.curToken.Location, "a shallower form", "nesting deeper than "+strconv.Itoa(MaxRecursionDepth))
	}

	tok := p.curToken
	switch tok.Type {
	case token.LPAREN:
		items, err := p.parseSequence(token.RPAREN)
		if err != nil {
			return nil, err
		}
		return &ast.List{Items: items, Loc: tok.Location}, nil
	case token.LBRACKET:
		items, err := p.parseSequence(token.RBRACKET)
		if err != nil {
			return nil, err
		}
		return &ast.Array{Items: items, Loc: tok.Location}, nil
	case token.LBRACE:
		return p.parseObject()
	case token.UNQUOTE:
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		inner, err := p.parseOperand(tok)
		if err != nil {
			return nil, err
		}
		return &ast.Unquote{Inner: inner, Loc: tok.Location}, nil
	case token.SPLICE:
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		inner, err := p.parseOperand(tok)
		if err != nil {
			return nil, err
		}
		return &ast.Splice{Inner: inner, Loc: tok.Location}, nil
	case token.STRING:
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		return &ast.StringLiteral{Value: tok.Value, Loc: tok.Location}, nil
	case token.NUMBER:
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		return parseNumber(tok)
	case token.SYMBOL:
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		return parseSymbol(tok), nil
	case token.EOF:
		return nil, diagnostics.NewParseError(diagnostics.ErrP001, tok.Location, "a form", tok.String())
	}
	return nil, diagnostics.NewParseError(diagnostics.ErrP001, tok.Location, "a form", tok.String())
}

// parseOperand parses the form following a sigil.
func (p *Parser) parseOperand(sigil token.Token) (ast.Form, error) {
	if p.curTokenIs(token.EOF) {
		return nil, diagnostics.NewParseError(diagnostics.ErrP001, p.curToken.Location, "a form after "+sigil.String(), p.curToken.String())
	}
	return p.parseForm()
}

func (p *Parser) parseSequence(closing token.TokenType) ([]ast.Form, error) {
	open := p.curToken
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	items := []ast.Form{}
	for !p.curTokenIs(closing) {
		if p.curTokenIs(token.EOF) {
			return nil, diagnostics.NewParseError(diagnostics.ErrP003, p.curToken.Location, fmt.Sprintf("%q closing %q at %s", string(closing), open.Lexeme, open.Location), p.curToken.String())
		}
		item, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	return items, nil
}

// parseObject parses `{ a b: c $d }`: shorthand symbols, key-value pairs
// and unquoted entries.
func (p *Parser) parseObject() (ast.Form, error) {
	open := p.curToken
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	entries := []ast.Form{}
	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			return nil, diagnostics.NewParseError(diagnostics.ErrP003, p.curToken.Location, fmt.Sprintf("\"}\" closing \"{\" at %s", open.Location), p.curToken.String())
		}
		keyTok := p.curToken
		var key ast.Form
		switch keyTok.Type {
		case token.SYMBOL:
			if strings.Contains(keyTok.Value, ".") {
				return nil, diagnostics.NewParseError(diagnostics.ErrP001, keyTok.Location, "an identifier as an object key", keyTok.String())
			}
			if err := p.nextToken(); err != nil {
				return nil, err
			}
			key = &ast.Symbol{Name: keyTok.Value, Loc: keyTok.Location}
		case token.STRING:
			if err := p.nextToken(); err != nil {
				return nil, err
			}
			key = &ast.StringLiteral{Value: keyTok.Value, Loc: keyTok.Location}
		case token.UNQUOTE:
			form, err := p.parseForm()
			if err != nil {
				return nil, err
			}
			key = form
		default:
			return nil, diagnostics.NewParseError(diagnostics.ErrP001, keyTok.Location, "an object key", keyTok.String())
		}

		if !p.curTokenIs(token.COLON) {
			switch k := key.(type) {
			case *ast.Symbol, *ast.Unquote:
				entries = append(entries, k)
				continue
			}
			return nil, diagnostics.NewParseError(diagnostics.ErrP001, p.curToken.Location, `":" after a string key`, p.curToken.String())
		}
		colon := p.curToken
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		if p.curTokenIs(token.RBRACE) || p.curTokenIs(token.EOF) {
			return nil, diagnostics.NewParseError(diagnostics.ErrP001, p.curToken.Location, "a value after "+colon.String(), p.curToken.String())
		}
		value, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		entries = append(entries, &ast.KeyValue{Key: key, Value: value, Loc: keyTok.Location})
	}
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	return &ast.Object{Entries: entries, Loc: open.Location}, nil
}

func parseNumber(tok token.Token) (ast.Form, error) {
	if strings.ContainsAny(tok.Lexeme, ".eE") {
		f, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, diagnostics.NewParseError(diagnostics.ErrP005, tok.Location, "a 64-bit float", tok.String())
		}
		return &ast.Float64{Value: f, Loc: tok.Location}, nil
	}
	n, err := strconv.ParseInt(tok.Lexeme, 10, 64)
	if err != nil || n > math.MaxInt32 || n < math.MinInt32 {
		return nil, diagnostics.NewParseError(diagnostics.ErrP005, tok.Location, "a 32-bit integer", tok.String())
	}
	return &ast.Integer32{Value: int32(n), Loc: tok.Location}, nil
}

func parseSymbol(tok token.Token) ast.Form {
	switch tok.Value {
	case "true":
		return &ast.Bool{Value: true, Loc: tok.Location}
	case "false":
		return &ast.Bool{Value: false, Loc: tok.Location}
	case "none":
		return &ast.None{Loc: tok.Location}
	}
	if strings.Contains(tok.Value, ".") {
		return &ast.PropertyAccess{Parts: strings.Split(tok.Value, "."), Loc: tok.Location}
	}
	return &ast.Symbol{Name: tok.Value, Loc: tok.Location}
}

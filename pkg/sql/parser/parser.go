// Package parser parses halcyon's SQL dialect into AST nodes.
//
// Parsing is deterministic: the same text always yields the same tree, and
// the tree's String() output re-parses to a structurally equal tree.
package parser

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/halcyondb/halcyon/pkg/sql/ast"
	"github.com/halcyondb/halcyon/pkg/sql/lexer"
	"github.com/halcyondb/halcyon/pkg/sql/token"
)

// Operator precedence levels, lowest first.
const (
	_ int = iota
	precLowest
	precOr
	precAnd
	precIs
	precEquals
	precLessGreater
	precSum
	precProduct
	precPrefix
	precCast
)

var precedences = map[token.Type]int{
	token.OR:       precOr,
	token.AND:      precAnd,
	token.IS:       precIs,
	token.EQ:       precEquals,
	token.NEQ:      precEquals,
	token.LT:       precLessGreater,
	token.LTE:      precLessGreater,
	token.GT:       precLessGreater,
	token.GTE:      precLessGreater,
	token.PLUS:     precSum,
	token.MINUS:    precSum,
	token.CONCAT:   precSum,
	token.ASTERISK: precProduct,
	token.SLASH:    precProduct,
	token.PERCENT:  precProduct,
	token.DBLCOLON: precCast,
}

// Parser consumes tokens from a lexer and produces statements.
type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token

	errors []string
}

// New creates a parser over the given lexer.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	// Prime curToken and peekToken.
	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns the parse errors accumulated so far.
func (p *Parser) Errors() []string { return p.errors }

// Parse parses SQL text into a program.
func Parse(sql string) (*ast.Program, error) {
	p := New(lexer.New(sql))
	program := p.ParseProgram()
	if len(p.errors) > 0 {
		return nil, fmt.Errorf("parse error: %s", strings.Join(p.errors, "; "))
	}
	return program, nil
}

// ParseOne parses SQL text that must contain exactly one statement. The
// catalog persists one CREATE statement per item, so anything else is a
// usage error.
func ParseOne(sql string) (ast.Statement, error) {
	program, err := Parse(sql)
	if err != nil {
		return nil, err
	}
	if len(program.Statements) != 1 {
		return nil, fmt.Errorf("expected exactly one statement, found %d", len(program.Statements))
	}
	return program.Statements[0], nil
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.Type) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errorf("expected %s, got %s (%q) at line %d", t, p.peekToken.Type, p.peekToken.Literal, p.peekToken.Line)
	return false
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

// ParseProgram parses statements until EOF.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		} else if len(p.errors) > 0 {
			break
		}
		p.nextToken()
	}
	return program
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.CREATE:
		return p.parseCreateStatement()
	case token.SELECT:
		return p.parseSelectStatement()
	default:
		p.errorf("unexpected token %q at line %d", p.curToken.Literal, p.curToken.Line)
		return nil
	}
}

// -----------------------------------------------------------------------------
// CREATE statements
// -----------------------------------------------------------------------------

func (p *Parser) parseCreateStatement() ast.Statement {
	tok := p.curToken

	var temporary, materialized bool
	for {
		switch p.peekToken.Type {
		case token.TEMPORARY, token.TEMP:
			temporary = true
			p.nextToken()
			continue
		case token.MATERIALIZED:
			materialized = true
			p.nextToken()
			continue
		}
		break
	}

	switch p.peekToken.Type {
	case token.TABLE:
		p.nextToken()
		return p.parseCreateTable(tok, temporary)
	case token.VIEW:
		p.nextToken()
		return p.parseCreateView(tok, temporary, materialized)
	case token.INDEX:
		p.nextToken()
		return p.parseCreateIndex(tok)
	case token.TYPE:
		p.nextToken()
		return p.parseCreateType(tok)
	case token.SOURCE:
		p.nextToken()
		return p.parseCreateSource(tok, materialized)
	case token.SINK:
		p.nextToken()
		return p.parseCreateSink(tok)
	default:
		p.errorf("unexpected token %q after CREATE at line %d", p.peekToken.Literal, p.peekToken.Line)
		return nil
	}
}

func (p *Parser) parseIfNotExists() bool {
	if !p.peekTokenIs(token.IF) {
		return false
	}
	p.nextToken()
	if !p.expectPeek(token.NOT) {
		return false
	}
	if !p.expectPeek(token.EXISTS) {
		return false
	}
	return true
}

func (p *Parser) parseCreateTable(tok token.Token, temporary bool) ast.Statement {
	stmt := &ast.CreateTableStatement{Token: tok, Temporary: temporary}
	stmt.IfNotExists = p.parseIfNotExists()

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = p.parseObjectName()

	if !p.expectPeek(token.LPAREN) {
		return nil
	}

	for {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		col := &ast.ColumnDef{Name: p.parseIdentifier()}
		p.nextToken()
		col.Type = p.parseDataType()
		if col.Type == nil {
			return nil
		}
		if p.peekTokenIs(token.NOT) {
			p.nextToken()
			if !p.expectPeek(token.NULL) {
				return nil
			}
			col.NotNull = true
		} else if p.peekTokenIs(token.NULL) {
			p.nextToken()
		}
		if p.peekTokenIs(token.DEFAULT) {
			p.nextToken()
			p.nextToken()
			col.Default = p.parseExpression(precLowest)
		}
		stmt.Columns = append(stmt.Columns, col)

		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return stmt
}

func (p *Parser) parseCreateView(tok token.Token, temporary, materialized bool) ast.Statement {
	stmt := &ast.CreateViewStatement{Token: tok, Temporary: temporary, Materialized: materialized}
	stmt.IfNotExists = p.parseIfNotExists()

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = p.parseObjectName()

	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		for {
			if !p.expectPeek(token.IDENT) {
				return nil
			}
			stmt.Columns = append(stmt.Columns, p.parseIdentifier())
			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
				continue
			}
			break
		}
		if !p.expectPeek(token.RPAREN) {
			return nil
		}
	}

	if !p.expectPeek(token.AS) {
		return nil
	}
	if !p.expectPeek(token.SELECT) {
		return nil
	}
	stmt.Query = p.parseSelectStatement()
	if stmt.Query == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseCreateIndex(tok token.Token) ast.Statement {
	stmt := &ast.CreateIndexStatement{Token: tok}
	stmt.IfNotExists = p.parseIfNotExists()

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = p.parseIdentifier()

	if !p.expectPeek(token.ON) {
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.On = p.parseObjectName()

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	for {
		p.nextToken()
		expr := p.parseExpression(precLowest)
		if expr == nil {
			return nil
		}
		stmt.KeyParts = append(stmt.KeyParts, expr)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	if p.peekTokenIs(token.WITH) {
		p.nextToken()
		stmt.WithOptions = p.parseOptions()
		if stmt.WithOptions == nil {
			return nil
		}
	}
	return stmt
}

func (p *Parser) parseCreateType(tok token.Token) ast.Statement {
	stmt := &ast.CreateTypeStatement{Token: tok}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = p.parseObjectName()

	if !p.expectPeek(token.AS) {
		return nil
	}
	if !p.expectPeek(token.LIST) {
		return nil
	}
	stmt.Variant = "LIST"

	if !p.expectPeek(token.WITH) {
		return nil
	}
	stmt.WithOptions = p.parseOptions()
	if stmt.WithOptions == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseCreateSource(tok token.Token, materialized bool) ast.Statement {
	stmt := &ast.CreateSourceStatement{Token: tok, Materialized: materialized}
	stmt.IfNotExists = p.parseIfNotExists()

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = p.parseObjectName()

	if !p.expectPeek(token.FROM) {
		return nil
	}
	stmt.Connector = p.parseConnector()
	if stmt.Connector == nil {
		return nil
	}

	if p.peekTokenIs(token.WITH) {
		p.nextToken()
		stmt.WithOptions = p.parseOptions()
		if stmt.WithOptions == nil {
			return nil
		}
	}
	if p.peekTokenIs(token.FORMAT) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		stmt.Format = p.parseIdentifier()
	}
	return stmt
}

func (p *Parser) parseCreateSink(tok token.Token) ast.Statement {
	stmt := &ast.CreateSinkStatement{Token: tok}
	stmt.IfNotExists = p.parseIfNotExists()

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = p.parseObjectName()

	if !p.expectPeek(token.FROM) {
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.From = p.parseObjectName()

	if !p.expectPeek(token.INTO) {
		return nil
	}
	stmt.Connector = p.parseConnector()
	if stmt.Connector == nil {
		return nil
	}

	if p.peekTokenIs(token.WITH) {
		p.nextToken()
		stmt.WithOptions = p.parseOptions()
		if stmt.WithOptions == nil {
			return nil
		}
	}
	if p.peekTokenIs(token.FORMAT) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		stmt.Format = p.parseIdentifier()
	}
	return stmt
}

func (p *Parser) parseConnector() ast.Connector {
	switch p.peekToken.Type {
	case token.FILE:
		p.nextToken()
		tok := p.curToken
		if !p.expectPeek(token.STRING) {
			return nil
		}
		return &ast.FileConnector{Token: tok, Path: p.curToken.Literal}
	case token.KAFKA:
		p.nextToken()
		tok := p.curToken
		if !p.expectPeek(token.BROKER) {
			return nil
		}
		if !p.expectPeek(token.STRING) {
			return nil
		}
		broker := p.curToken.Literal
		if !p.expectPeek(token.TOPIC) {
			return nil
		}
		if !p.expectPeek(token.STRING) {
			return nil
		}
		return &ast.KafkaConnector{Token: tok, Broker: broker, Topic: p.curToken.Literal}
	default:
		p.errorf("expected connector, got %q at line %d", p.peekToken.Literal, p.peekToken.Line)
		return nil
	}
}

// parseOptions parses ( name [= value], ... ). The caller positions the
// parser on the WITH token.
func (p *Parser) parseOptions() []*ast.Option {
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	var opts []*ast.Option
	for {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		opt := &ast.Option{Name: p.parseIdentifier()}
		if p.peekTokenIs(token.EQ) {
			p.nextToken()
			p.nextToken()
			opt.Value = p.parseOptionValue()
			if opt.Value == nil {
				return nil
			}
		}
		opts = append(opts, opt)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return opts
}

func (p *Parser) parseOptionValue() ast.OptionValue {
	switch p.curToken.Type {
	case token.STRING:
		return &ast.StringValue{Token: p.curToken, Value: p.curToken.Literal}
	case token.NUMBER:
		v, err := decimal.NewFromString(p.curToken.Literal)
		if err != nil {
			p.errorf("invalid number %q at line %d", p.curToken.Literal, p.curToken.Line)
			return nil
		}
		return &ast.NumberValue{Token: p.curToken, Value: v}
	case token.TRUE:
		return &ast.BoolValue{Token: p.curToken, Value: true}
	case token.FALSE:
		return &ast.BoolValue{Token: p.curToken, Value: false}
	case token.IDENT:
		// A bare name in option position is a type reference, e.g.
		// element_type = int4.
		dt := p.parseDataType()
		if dt == nil {
			return nil
		}
		return &ast.TypeValue{Type: dt}
	default:
		p.errorf("invalid option value %q at line %d", p.curToken.Literal, p.curToken.Line)
		return nil
	}
}

// -----------------------------------------------------------------------------
// Names and types
// -----------------------------------------------------------------------------

// parseIdentifier builds an identifier from the current token.
func (p *Parser) parseIdentifier() *ast.Identifier {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

// parseObjectName parses a dotted name path starting at the current token.
func (p *Parser) parseObjectName() *ast.ObjectName {
	name := &ast.ObjectName{Parts: []*ast.Identifier{p.parseIdentifier()}}
	for p.peekTokenIs(token.DOT) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		name.Parts = append(name.Parts, p.parseIdentifier())
	}
	return name
}

// parseDataType parses a type reference starting at the current token:
// a possibly-qualified name, optional precision arguments, and any number of
// postfix list constructors.
func (p *Parser) parseDataType() ast.DataType {
	if !p.curTokenIs(token.IDENT) {
		p.errorf("expected type name, got %q at line %d", p.curToken.Literal, p.curToken.Line)
		return nil
	}
	named := &ast.NamedType{Name: p.parseObjectName()}
	if named.Name == nil {
		return nil
	}
	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		for {
			p.nextToken()
			arg := p.parseExpression(precLowest)
			if arg == nil {
				return nil
			}
			named.Args = append(named.Args, arg)
			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
				continue
			}
			break
		}
		if !p.expectPeek(token.RPAREN) {
			return nil
		}
	}
	var dt ast.DataType = named
	for p.peekTokenIs(token.LIST) {
		p.nextToken()
		dt = &ast.ListType{Element: dt}
	}
	return dt
}

// -----------------------------------------------------------------------------
// Queries
// -----------------------------------------------------------------------------

// parseSelectStatement parses a query body. The caller positions the parser
// on the SELECT token.
func (p *Parser) parseSelectStatement() *ast.SelectStatement {
	stmt := &ast.SelectStatement{Token: p.curToken}

	if p.peekTokenIs(token.DISTINCT) {
		p.nextToken()
		stmt.Distinct = true
	}

	for {
		p.nextToken()
		item := &ast.SelectItem{}
		if p.curTokenIs(token.ASTERISK) {
			item.Star = true
		} else {
			item.Expr = p.parseExpression(precLowest)
			if item.Expr == nil {
				return nil
			}
			if p.peekTokenIs(token.AS) {
				p.nextToken()
				if !p.expectPeek(token.IDENT) {
					return nil
				}
				item.Alias = p.parseIdentifier()
			}
		}
		stmt.Items = append(stmt.Items, item)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}

	if p.peekTokenIs(token.FROM) {
		p.nextToken()
		for {
			factor := p.parseTableFactor()
			if factor == nil {
				return nil
			}
			stmt.From = append(stmt.From, factor)
			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
				continue
			}
			break
		}
	}

	if p.peekTokenIs(token.WHERE) {
		p.nextToken()
		p.nextToken()
		stmt.Where = p.parseExpression(precLowest)
		if stmt.Where == nil {
			return nil
		}
	}

	if p.peekTokenIs(token.GROUP) {
		p.nextToken()
		if !p.expectPeek(token.BY) {
			return nil
		}
		for {
			p.nextToken()
			g := p.parseExpression(precLowest)
			if g == nil {
				return nil
			}
			stmt.GroupBy = append(stmt.GroupBy, g)
			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
				continue
			}
			break
		}
	}

	if p.peekTokenIs(token.HAVING) {
		p.nextToken()
		p.nextToken()
		stmt.Having = p.parseExpression(precLowest)
		if stmt.Having == nil {
			return nil
		}
	}

	if p.peekTokenIs(token.ORDER) {
		p.nextToken()
		if !p.expectPeek(token.BY) {
			return nil
		}
		for {
			p.nextToken()
			ob := &ast.OrderByItem{Expr: p.parseExpression(precLowest)}
			if ob.Expr == nil {
				return nil
			}
			if p.peekTokenIs(token.ASC) {
				p.nextToken()
				ob.Direction = "ASC"
			} else if p.peekTokenIs(token.DESC) {
				p.nextToken()
				ob.Direction = "DESC"
			}
			stmt.OrderBy = append(stmt.OrderBy, ob)
			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
				continue
			}
			break
		}
	}

	if p.peekTokenIs(token.LIMIT) {
		p.nextToken()
		p.nextToken()
		stmt.Limit = p.parseExpression(precLowest)
		if stmt.Limit == nil {
			return nil
		}
	}

	return stmt
}

// parseTableFactor parses one FROM-clause factor and any joins chained onto
// it. The caller positions the parser on the token before the factor.
func (p *Parser) parseTableFactor() ast.TableFactor {
	var factor ast.TableFactor

	switch p.peekToken.Type {
	case token.LPAREN:
		p.nextToken()
		if !p.expectPeek(token.SELECT) {
			return nil
		}
		query := p.parseSelectStatement()
		if query == nil {
			return nil
		}
		if !p.expectPeek(token.RPAREN) {
			return nil
		}
		derived := &ast.DerivedTable{Query: query}
		if !p.expectPeek(token.AS) {
			return nil
		}
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		derived.Alias = p.parseIdentifier()
		factor = derived
	case token.IDENT:
		p.nextToken()
		name := p.parseObjectName()
		if name == nil {
			return nil
		}
		if p.peekTokenIs(token.LPAREN) {
			fn := &ast.TableFunction{Name: name}
			p.nextToken()
			if !p.peekTokenIs(token.RPAREN) {
				for {
					p.nextToken()
					arg := p.parseExpression(precLowest)
					if arg == nil {
						return nil
					}
					fn.Args = append(fn.Args, arg)
					if p.peekTokenIs(token.COMMA) {
						p.nextToken()
						continue
					}
					break
				}
			}
			if !p.expectPeek(token.RPAREN) {
				return nil
			}
			if p.peekTokenIs(token.AS) {
				p.nextToken()
				if !p.expectPeek(token.IDENT) {
					return nil
				}
				fn.Alias = p.parseIdentifier()
			}
			factor = fn
		} else {
			tn := &ast.TableName{Name: name}
			if p.peekTokenIs(token.AS) {
				p.nextToken()
				if !p.expectPeek(token.IDENT) {
					return nil
				}
				tn.Alias = p.parseIdentifier()
			}
			factor = tn
		}
	default:
		p.errorf("expected table factor, got %q at line %d", p.peekToken.Literal, p.peekToken.Line)
		return nil
	}

	for {
		joinType, ok := p.peekJoinType()
		if !ok {
			return factor
		}
		right := p.parseJoinRight()
		if right == nil {
			return nil
		}
		join := &ast.JoinedTable{Left: factor, JoinType: joinType, Right: right}
		if joinType != "CROSS JOIN" {
			if !p.expectPeek(token.ON) {
				return nil
			}
			p.nextToken()
			join.On = p.parseExpression(precLowest)
			if join.On == nil {
				return nil
			}
		}
		factor = join
	}
}

// peekJoinType consumes and classifies a join keyword sequence if one
// follows. It returns the rendered join type and whether a join was seen.
func (p *Parser) peekJoinType() (string, bool) {
	switch p.peekToken.Type {
	case token.JOIN:
		p.nextToken()
		return "JOIN", true
	case token.INNER:
		p.nextToken()
		if !p.expectPeek(token.JOIN) {
			return "", false
		}
		return "INNER JOIN", true
	case token.CROSS:
		p.nextToken()
		if !p.expectPeek(token.JOIN) {
			return "", false
		}
		return "CROSS JOIN", true
	case token.LEFT, token.RIGHT, token.FULL:
		side := strings.ToUpper(p.peekToken.Literal)
		p.nextToken()
		if p.peekTokenIs(token.OUTER) {
			p.nextToken()
			side += " OUTER"
		}
		if !p.expectPeek(token.JOIN) {
			return "", false
		}
		return side + " JOIN", true
	default:
		return "", false
	}
}

// parseJoinRight parses the right-hand side of a join: a single table,
// table function, or derived table, without consuming further join chains
// (joins associate left).
func (p *Parser) parseJoinRight() ast.TableFactor {
	switch p.peekToken.Type {
	case token.LPAREN:
		p.nextToken()
		if !p.expectPeek(token.SELECT) {
			return nil
		}
		query := p.parseSelectStatement()
		if query == nil {
			return nil
		}
		if !p.expectPeek(token.RPAREN) {
			return nil
		}
		derived := &ast.DerivedTable{Query: query}
		if !p.expectPeek(token.AS) {
			return nil
		}
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		derived.Alias = p.parseIdentifier()
		return derived
	case token.IDENT:
		p.nextToken()
		name := p.parseObjectName()
		if name == nil {
			return nil
		}
		if p.peekTokenIs(token.LPAREN) {
			fn := &ast.TableFunction{Name: name}
			p.nextToken()
			if !p.peekTokenIs(token.RPAREN) {
				for {
					p.nextToken()
					arg := p.parseExpression(precLowest)
					if arg == nil {
						return nil
					}
					fn.Args = append(fn.Args, arg)
					if p.peekTokenIs(token.COMMA) {
						p.nextToken()
						continue
					}
					break
				}
			}
			if !p.expectPeek(token.RPAREN) {
				return nil
			}
			if p.peekTokenIs(token.AS) {
				p.nextToken()
				if !p.expectPeek(token.IDENT) {
					return nil
				}
				fn.Alias = p.parseIdentifier()
			}
			return fn
		}
		tn := &ast.TableName{Name: name}
		if p.peekTokenIs(token.AS) {
			p.nextToken()
			if !p.expectPeek(token.IDENT) {
				return nil
			}
			tn.Alias = p.parseIdentifier()
		}
		return tn
	default:
		p.errorf("expected table factor after join, got %q at line %d", p.peekToken.Literal, p.peekToken.Line)
		return nil
	}
}

// -----------------------------------------------------------------------------
// Expressions (Pratt)
// -----------------------------------------------------------------------------

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return precLowest
}

// parseExpression parses an expression starting at the current token.
func (p *Parser) parseExpression(precedence int) ast.Expression {
	left := p.parsePrefix()
	if left == nil {
		return nil
	}

	for precedence < p.peekPrecedence() {
		switch p.peekToken.Type {
		case token.IS:
			p.nextToken()
			left = p.parseIsNull(left)
		case token.DBLCOLON:
			p.nextToken()
			left = p.parseShortCast(left)
		default:
			p.nextToken()
			left = p.parseInfix(left)
		}
		if left == nil {
			return nil
		}
	}
	return left
}

func (p *Parser) parsePrefix() ast.Expression {
	switch p.curToken.Type {
	case token.IDENT:
		return p.parseNameExpression()
	case token.NUMBER:
		v, err := decimal.NewFromString(p.curToken.Literal)
		if err != nil {
			p.errorf("invalid number %q at line %d", p.curToken.Literal, p.curToken.Line)
			return nil
		}
		return &ast.NumberLiteral{Token: p.curToken, Value: v}
	case token.STRING:
		return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
	case token.TRUE:
		return &ast.BooleanLiteral{Token: p.curToken, Value: true}
	case token.FALSE:
		return &ast.BooleanLiteral{Token: p.curToken, Value: false}
	case token.NULL:
		return &ast.NullLiteral{Token: p.curToken}
	case token.MINUS:
		tok := p.curToken
		p.nextToken()
		right := p.parseExpression(precPrefix)
		if right == nil {
			return nil
		}
		return &ast.PrefixExpression{Token: tok, Operator: "-", Right: right}
	case token.NOT:
		tok := p.curToken
		p.nextToken()
		right := p.parseExpression(precAnd)
		if right == nil {
			return nil
		}
		return &ast.PrefixExpression{Token: tok, Operator: "NOT", Right: right}
	case token.CAST:
		return p.parseCast()
	case token.CASE:
		return p.parseCase()
	case token.LPAREN:
		return p.parseGroupedOrSubquery()
	default:
		p.errorf("unexpected token %q in expression at line %d", p.curToken.Literal, p.curToken.Line)
		return nil
	}
}

// parseNameExpression parses an identifier path and decides between a
// column reference and a function call.
func (p *Parser) parseNameExpression() ast.Expression {
	tok := p.curToken
	name := p.parseObjectName()
	if name == nil {
		return nil
	}
	if !p.peekTokenIs(token.LPAREN) {
		return &ast.ColumnRef{Name: name}
	}

	fc := &ast.FunctionCall{Token: tok, Name: name}
	p.nextToken() // consume (

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return fc
	}
	if p.peekTokenIs(token.ASTERISK) {
		p.nextToken()
		fc.Star = true
		if !p.expectPeek(token.RPAREN) {
			return nil
		}
		return fc
	}
	if p.peekTokenIs(token.DISTINCT) {
		p.nextToken()
		fc.Distinct = true
	}
	for {
		p.nextToken()
		arg := p.parseExpression(precLowest)
		if arg == nil {
			return nil
		}
		fc.Args = append(fc.Args, arg)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return fc
}

func (p *Parser) parseCast() ast.Expression {
	ce := &ast.CastExpression{Token: p.curToken}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	ce.Expr = p.parseExpression(precLowest)
	if ce.Expr == nil {
		return nil
	}
	if !p.expectPeek(token.AS) {
		return nil
	}
	p.nextToken()
	ce.Type = p.parseDataType()
	if ce.Type == nil {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return ce
}

// parseCase parses both the simple (CASE operand WHEN ...) and the searched
// (CASE WHEN ...) forms.
func (p *Parser) parseCase() ast.Expression {
	ce := &ast.CaseExpression{Token: p.curToken}

	if !p.peekTokenIs(token.WHEN) {
		p.nextToken()
		ce.Operand = p.parseExpression(precLowest)
		if ce.Operand == nil {
			return nil
		}
	}

	for p.peekTokenIs(token.WHEN) {
		p.nextToken() // WHEN
		p.nextToken()
		cond := p.parseExpression(precLowest)
		if cond == nil {
			return nil
		}
		if !p.expectPeek(token.THEN) {
			return nil
		}
		p.nextToken()
		result := p.parseExpression(precLowest)
		if result == nil {
			return nil
		}
		ce.Whens = append(ce.Whens, &ast.WhenClause{Condition: cond, Result: result})
	}
	if len(ce.Whens) == 0 {
		p.errorf("expected WHEN, got %q at line %d", p.peekToken.Literal, p.peekToken.Line)
		return nil
	}

	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		p.nextToken()
		ce.Else = p.parseExpression(precLowest)
		if ce.Else == nil {
			return nil
		}
	}
	if !p.expectPeek(token.END) {
		return nil
	}
	return ce
}

// parseShortCast parses expr::type into the same node as CAST(expr AS type).
func (p *Parser) parseShortCast(left ast.Expression) ast.Expression {
	ce := &ast.CastExpression{Token: p.curToken, Expr: left}
	p.nextToken()
	ce.Type = p.parseDataType()
	if ce.Type == nil {
		return nil
	}
	return ce
}

func (p *Parser) parseIsNull(left ast.Expression) ast.Expression {
	ine := &ast.IsNullExpression{Token: p.curToken, Expr: left}
	if p.peekTokenIs(token.NOT) {
		p.nextToken()
		ine.Not = true
	}
	if !p.expectPeek(token.NULL) {
		return nil
	}
	return ine
}

func (p *Parser) parseInfix(left ast.Expression) ast.Expression {
	ie := &ast.InfixExpression{
		Token:    p.curToken,
		Left:     left,
		Operator: p.curToken.Literal,
	}
	precedence := precedences[p.curToken.Type]
	p.nextToken()
	ie.Right = p.parseExpression(precedence)
	if ie.Right == nil {
		return nil
	}
	return ie
}

// parseGroupedOrSubquery parses ( expr ) or ( SELECT ... ). Grouping parens
// carry no node of their own; the printer re-parenthesizes infix operators.
func (p *Parser) parseGroupedOrSubquery() ast.Expression {
	tok := p.curToken
	if p.peekTokenIs(token.SELECT) {
		p.nextToken()
		query := p.parseSelectStatement()
		if query == nil {
			return nil
		}
		if !p.expectPeek(token.RPAREN) {
			return nil
		}
		return &ast.SubqueryExpression{Token: tok, Query: query}
	}
	p.nextToken()
	expr := p.parseExpression(precLowest)
	if expr == nil {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return expr
}

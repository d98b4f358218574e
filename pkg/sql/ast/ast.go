// Package ast defines the Abstract Syntax Tree nodes for halcyon's SQL dialect.
//
// Every node renders back to SQL text through String(). The printer is
// stable: re-parsing a rendered node yields a structurally equal tree, which
// is what lets the catalog re-serialize persisted definitions after a rewrite.
package ast

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/halcyondb/halcyon/pkg/sql/token"
)

// Node represents a node in the AST.
type Node interface {
	TokenLiteral() string
	String() string
}

// Statement represents a statement node.
type Statement interface {
	Node
	statementNode()
}

// Expression represents an expression node.
type Expression interface {
	Node
	expressionNode()
}

// DataType represents a data-type node.
type DataType interface {
	Node
	dataTypeNode()
}

// TableFactor represents one relation in a FROM clause.
type TableFactor interface {
	Node
	tableFactorNode()
}

// OptionValue is the right-hand side of a WITH option.
type OptionValue interface {
	Node
	optionValueNode()
}

// Program is the root node of every parse.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out strings.Builder
	for i, s := range p.Statements {
		if i > 0 {
			out.WriteString("; ")
		}
		out.WriteString(s.String())
	}
	return out.String()
}

// -----------------------------------------------------------------------------
// Identifiers and names
// -----------------------------------------------------------------------------

// Identifier represents a single unquoted identifier.
type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }

// ObjectName is a possibly-qualified identifier path (schema.object, etc.).
// A single part means the name is bare; more than one means it is already
// explicitly qualified.
type ObjectName struct {
	Parts []*Identifier
}

func (o *ObjectName) TokenLiteral() string {
	if len(o.Parts) > 0 {
		return o.Parts[0].TokenLiteral()
	}
	return ""
}

func (o *ObjectName) String() string {
	parts := make([]string, len(o.Parts))
	for i, p := range o.Parts {
		parts[i] = p.Value
	}
	return strings.Join(parts, ".")
}

// Name constructs an ObjectName from plain string segments.
func Name(parts ...string) *ObjectName {
	n := &ObjectName{}
	for _, p := range parts {
		n.Parts = append(n.Parts, &Identifier{Value: p})
	}
	return n
}

// -----------------------------------------------------------------------------
// Literals
// -----------------------------------------------------------------------------

// NumberLiteral represents an integer or decimal literal. The parsed value is
// exact; String() preserves the source spelling.
type NumberLiteral struct {
	Token token.Token
	Value decimal.Decimal
}

func (nl *NumberLiteral) expressionNode()      {}
func (nl *NumberLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NumberLiteral) String() string       { return nl.Token.Literal }

// StringLiteral represents a single-quoted string literal.
type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string {
	return "'" + strings.ReplaceAll(sl.Value, "'", "''") + "'"
}

// BooleanLiteral represents TRUE or FALSE.
type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()      {}
func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Literal }
func (bl *BooleanLiteral) String() string {
	if bl.Value {
		return "TRUE"
	}
	return "FALSE"
}

// NullLiteral represents NULL.
type NullLiteral struct {
	Token token.Token
}

func (nl *NullLiteral) expressionNode()      {}
func (nl *NullLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NullLiteral) String() string       { return "NULL" }

// -----------------------------------------------------------------------------
// Expressions
// -----------------------------------------------------------------------------

// ColumnRef is a possibly-qualified name used in expression position.
type ColumnRef struct {
	Name *ObjectName
}

func (cr *ColumnRef) expressionNode()      {}
func (cr *ColumnRef) TokenLiteral() string { return cr.Name.TokenLiteral() }
func (cr *ColumnRef) String() string       { return cr.Name.String() }

// PrefixExpression represents a prefix expression (NOT, -).
type PrefixExpression struct {
	Token    token.Token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) String() string {
	return "(" + pe.Operator + " " + pe.Right.String() + ")"
}

// InfixExpression represents a binary expression (a + b, a AND b, etc.).
type InfixExpression struct {
	Token    token.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}

// IsNullExpression represents expr IS [NOT] NULL.
type IsNullExpression struct {
	Token token.Token
	Expr  Expression
	Not   bool
}

func (ine *IsNullExpression) expressionNode()      {}
func (ine *IsNullExpression) TokenLiteral() string { return ine.Token.Literal }
func (ine *IsNullExpression) String() string {
	if ine.Not {
		return "(" + ine.Expr.String() + " IS NOT NULL)"
	}
	return "(" + ine.Expr.String() + " IS NULL)"
}

// FunctionCall represents a scalar or aggregate function call. The name is an
// ObjectName so built-in calls can be schema-qualified in place.
type FunctionCall struct {
	Token    token.Token
	Name     *ObjectName
	Args     []Expression
	Star     bool // count(*)
	Distinct bool
}

func (fc *FunctionCall) expressionNode()      {}
func (fc *FunctionCall) TokenLiteral() string { return fc.Token.Literal }
func (fc *FunctionCall) String() string {
	var out strings.Builder
	out.WriteString(fc.Name.String())
	out.WriteString("(")
	if fc.Star {
		out.WriteString("*")
	} else {
		if fc.Distinct {
			out.WriteString("DISTINCT ")
		}
		for i, a := range fc.Args {
			if i > 0 {
				out.WriteString(", ")
			}
			out.WriteString(a.String())
		}
	}
	out.WriteString(")")
	return out.String()
}

// CastExpression represents CAST(expr AS type). The :: form parses to the
// same node and renders in CAST form.
type CastExpression struct {
	Token token.Token
	Expr  Expression
	Type  DataType
}

func (ce *CastExpression) expressionNode()      {}
func (ce *CastExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CastExpression) String() string {
	return "CAST(" + ce.Expr.String() + " AS " + ce.Type.String() + ")"
}

// WhenClause is one WHEN condition THEN result arm of a CASE expression.
type WhenClause struct {
	Condition Expression
	Result    Expression
}

// CaseExpression represents CASE [operand] WHEN ... THEN ... [ELSE ...] END.
type CaseExpression struct {
	Token   token.Token
	Operand Expression // nil for the searched form
	Whens   []*WhenClause
	Else    Expression // nil when absent
}

func (ce *CaseExpression) expressionNode()      {}
func (ce *CaseExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CaseExpression) String() string {
	var out strings.Builder
	out.WriteString("CASE")
	if ce.Operand != nil {
		out.WriteString(" ")
		out.WriteString(ce.Operand.String())
	}
	for _, w := range ce.Whens {
		out.WriteString(" WHEN ")
		out.WriteString(w.Condition.String())
		out.WriteString(" THEN ")
		out.WriteString(w.Result.String())
	}
	if ce.Else != nil {
		out.WriteString(" ELSE ")
		out.WriteString(ce.Else.String())
	}
	out.WriteString(" END")
	return out.String()
}

// SubqueryExpression represents a parenthesized scalar subquery.
type SubqueryExpression struct {
	Token token.Token
	Query *SelectStatement
}

func (se *SubqueryExpression) expressionNode()      {}
func (se *SubqueryExpression) TokenLiteral() string { return se.Token.Literal }
func (se *SubqueryExpression) String() string       { return "(" + se.Query.String() + ")" }

// -----------------------------------------------------------------------------
// Data types
// -----------------------------------------------------------------------------

// NamedType is a possibly-qualified type name with optional precision
// arguments, e.g. int8, pg_catalog.int8, numeric(38, 0).
type NamedType struct {
	Name *ObjectName
	Args []Expression
}

func (nt *NamedType) dataTypeNode()        {}
func (nt *NamedType) TokenLiteral() string { return nt.Name.TokenLiteral() }
func (nt *NamedType) String() string {
	var out strings.Builder
	out.WriteString(nt.Name.String())
	if len(nt.Args) > 0 {
		out.WriteString("(")
		for i, a := range nt.Args {
			if i > 0 {
				out.WriteString(", ")
			}
			out.WriteString(a.String())
		}
		out.WriteString(")")
	}
	return out.String()
}

// ListType is the postfix list type constructor, e.g. int4 list.
type ListType struct {
	Element DataType
}

func (lt *ListType) dataTypeNode()        {}
func (lt *ListType) TokenLiteral() string { return lt.Element.TokenLiteral() }
func (lt *ListType) String() string       { return lt.Element.String() + " list" }

// -----------------------------------------------------------------------------
// Options
// -----------------------------------------------------------------------------

// Option is one key[= value] entry of a WITH clause.
type Option struct {
	Name  *Identifier
	Value OptionValue
}

func (o *Option) TokenLiteral() string { return o.Name.TokenLiteral() }
func (o *Option) String() string {
	if o.Value == nil {
		return o.Name.Value
	}
	return o.Name.Value + " = " + o.Value.String()
}

// StringValue is a string option value.
type StringValue struct {
	Token token.Token
	Value string
}

func (sv *StringValue) optionValueNode()     {}
func (sv *StringValue) TokenLiteral() string { return sv.Token.Literal }
func (sv *StringValue) String() string {
	return "'" + strings.ReplaceAll(sv.Value, "'", "''") + "'"
}

// NumberValue is a numeric option value.
type NumberValue struct {
	Token token.Token
	Value decimal.Decimal
}

func (nv *NumberValue) optionValueNode()     {}
func (nv *NumberValue) TokenLiteral() string { return nv.Token.Literal }
func (nv *NumberValue) String() string       { return nv.Token.Literal }

// BoolValue is a boolean option value.
type BoolValue struct {
	Token token.Token
	Value bool
}

func (bv *BoolValue) optionValueNode()     {}
func (bv *BoolValue) TokenLiteral() string { return bv.Token.Literal }
func (bv *BoolValue) String() string {
	if bv.Value {
		return "TRUE"
	}
	return "FALSE"
}

// TypeValue is an option value that names a type, e.g. element_type = int4.
type TypeValue struct {
	Type DataType
}

func (tv *TypeValue) optionValueNode()     {}
func (tv *TypeValue) TokenLiteral() string { return tv.Type.TokenLiteral() }
func (tv *TypeValue) String() string       { return tv.Type.String() }

func optionsString(opts []*Option) string {
	var out strings.Builder
	out.WriteString("WITH (")
	for i, o := range opts {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(o.String())
	}
	out.WriteString(")")
	return out.String()
}

// -----------------------------------------------------------------------------
// Queries
// -----------------------------------------------------------------------------

// SelectItem is one projection of a SELECT list.
type SelectItem struct {
	Expr  Expression
	Alias *Identifier
	Star  bool // bare *
}

func (si *SelectItem) TokenLiteral() string {
	if si.Star {
		return "*"
	}
	return si.Expr.TokenLiteral()
}

func (si *SelectItem) String() string {
	if si.Star {
		return "*"
	}
	if si.Alias != nil {
		return si.Expr.String() + " AS " + si.Alias.Value
	}
	return si.Expr.String()
}

// OrderByItem is one key of an ORDER BY clause. Direction is "", "ASC" or
// "DESC"; the empty string means the direction was not written.
type OrderByItem struct {
	Expr      Expression
	Direction string
}

func (ob *OrderByItem) TokenLiteral() string { return ob.Expr.TokenLiteral() }
func (ob *OrderByItem) String() string {
	if ob.Direction != "" {
		return ob.Expr.String() + " " + ob.Direction
	}
	return ob.Expr.String()
}

// SelectStatement is a query body. It appears standalone, as a view
// definition, and wrapped by SubqueryExpression and DerivedTable.
type SelectStatement struct {
	Token    token.Token
	Distinct bool
	Items    []*SelectItem
	From     []TableFactor
	Where    Expression
	GroupBy  []Expression
	Having   Expression
	OrderBy  []*OrderByItem
	Limit    Expression
}

func (ss *SelectStatement) statementNode()       {}
func (ss *SelectStatement) TokenLiteral() string { return ss.Token.Literal }
func (ss *SelectStatement) String() string {
	var out strings.Builder
	out.WriteString("SELECT ")
	if ss.Distinct {
		out.WriteString("DISTINCT ")
	}
	for i, item := range ss.Items {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(item.String())
	}
	if len(ss.From) > 0 {
		out.WriteString(" FROM ")
		for i, f := range ss.From {
			if i > 0 {
				out.WriteString(", ")
			}
			out.WriteString(f.String())
		}
	}
	if ss.Where != nil {
		out.WriteString(" WHERE ")
		out.WriteString(ss.Where.String())
	}
	if len(ss.GroupBy) > 0 {
		out.WriteString(" GROUP BY ")
		for i, g := range ss.GroupBy {
			if i > 0 {
				out.WriteString(", ")
			}
			out.WriteString(g.String())
		}
	}
	if ss.Having != nil {
		out.WriteString(" HAVING ")
		out.WriteString(ss.Having.String())
	}
	if len(ss.OrderBy) > 0 {
		out.WriteString(" ORDER BY ")
		for i, ob := range ss.OrderBy {
			if i > 0 {
				out.WriteString(", ")
			}
			out.WriteString(ob.String())
		}
	}
	if ss.Limit != nil {
		out.WriteString(" LIMIT ")
		out.WriteString(ss.Limit.String())
	}
	return out.String()
}

// -----------------------------------------------------------------------------
// Table factors
// -----------------------------------------------------------------------------

// TableName is a named relation reference.
type TableName struct {
	Name  *ObjectName
	Alias *Identifier
}

func (tn *TableName) tableFactorNode()     {}
func (tn *TableName) TokenLiteral() string { return tn.Name.TokenLiteral() }
func (tn *TableName) String() string {
	if tn.Alias != nil {
		return tn.Name.String() + " AS " + tn.Alias.Value
	}
	return tn.Name.String()
}

// TableFunction is a table-valued function reference in a FROM clause. The
// name is an ObjectName so built-in table functions can be schema-qualified
// in place.
type TableFunction struct {
	Name  *ObjectName
	Args  []Expression
	Alias *Identifier
}

func (tf *TableFunction) tableFactorNode()     {}
func (tf *TableFunction) TokenLiteral() string { return tf.Name.TokenLiteral() }
func (tf *TableFunction) String() string {
	var out strings.Builder
	out.WriteString(tf.Name.String())
	out.WriteString("(")
	for i, a := range tf.Args {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(a.String())
	}
	out.WriteString(")")
	if tf.Alias != nil {
		out.WriteString(" AS ")
		out.WriteString(tf.Alias.Value)
	}
	return out.String()
}

// DerivedTable is a parenthesized subquery in a FROM clause.
type DerivedTable struct {
	Query *SelectStatement
	Alias *Identifier
}

func (dt *DerivedTable) tableFactorNode()     {}
func (dt *DerivedTable) TokenLiteral() string { return dt.Query.TokenLiteral() }
func (dt *DerivedTable) String() string {
	out := "(" + dt.Query.String() + ")"
	if dt.Alias != nil {
		out += " AS " + dt.Alias.Value
	}
	return out
}

// JoinedTable chains a join onto a factor. JoinType is the rendered join
// keyword sequence ("JOIN", "LEFT JOIN", "CROSS JOIN", ...).
type JoinedTable struct {
	Left     TableFactor
	JoinType string
	Right    TableFactor
	On       Expression
}

func (jt *JoinedTable) tableFactorNode()     {}
func (jt *JoinedTable) TokenLiteral() string { return jt.Left.TokenLiteral() }
func (jt *JoinedTable) String() string {
	out := jt.Left.String() + " " + jt.JoinType + " " + jt.Right.String()
	if jt.On != nil {
		out += " ON " + jt.On.String()
	}
	return out
}

// -----------------------------------------------------------------------------
// CREATE statements
// -----------------------------------------------------------------------------

// ColumnDef is one column definition of CREATE TABLE.
type ColumnDef struct {
	Name    *Identifier
	Type    DataType
	NotNull bool
	Default Expression
}

func (cd *ColumnDef) TokenLiteral() string { return cd.Name.TokenLiteral() }
func (cd *ColumnDef) String() string {
	var out strings.Builder
	out.WriteString(cd.Name.Value)
	out.WriteString(" ")
	out.WriteString(cd.Type.String())
	if cd.NotNull {
		out.WriteString(" NOT NULL")
	}
	if cd.Default != nil {
		out.WriteString(" DEFAULT ")
		out.WriteString(cd.Default.String())
	}
	return out.String()
}

// CreateTableStatement represents CREATE TABLE.
type CreateTableStatement struct {
	Token       token.Token
	Name        *ObjectName
	Columns     []*ColumnDef
	Temporary   bool
	IfNotExists bool
}

func (s *CreateTableStatement) statementNode()       {}
func (s *CreateTableStatement) TokenLiteral() string { return s.Token.Literal }
func (s *CreateTableStatement) String() string {
	var out strings.Builder
	out.WriteString("CREATE ")
	if s.Temporary {
		out.WriteString("TEMPORARY ")
	}
	out.WriteString("TABLE ")
	if s.IfNotExists {
		out.WriteString("IF NOT EXISTS ")
	}
	out.WriteString(s.Name.String())
	out.WriteString(" (")
	for i, c := range s.Columns {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(c.String())
	}
	out.WriteString(")")
	return out.String()
}

// CreateViewStatement represents CREATE [MATERIALIZED] VIEW.
type CreateViewStatement struct {
	Token        token.Token
	Name         *ObjectName
	Columns      []*Identifier
	Query        *SelectStatement
	Temporary    bool
	Materialized bool
	IfNotExists  bool
}

func (s *CreateViewStatement) statementNode()       {}
func (s *CreateViewStatement) TokenLiteral() string { return s.Token.Literal }
func (s *CreateViewStatement) String() string {
	var out strings.Builder
	out.WriteString("CREATE ")
	if s.Temporary {
		out.WriteString("TEMPORARY ")
	}
	if s.Materialized {
		out.WriteString("MATERIALIZED ")
	}
	out.WriteString("VIEW ")
	if s.IfNotExists {
		out.WriteString("IF NOT EXISTS ")
	}
	out.WriteString(s.Name.String())
	if len(s.Columns) > 0 {
		out.WriteString(" (")
		for i, c := range s.Columns {
			if i > 0 {
				out.WriteString(", ")
			}
			out.WriteString(c.Value)
		}
		out.WriteString(")")
	}
	out.WriteString(" AS ")
	out.WriteString(s.Query.String())
	return out.String()
}

// CreateIndexStatement represents CREATE INDEX.
type CreateIndexStatement struct {
	Token       token.Token
	Name        *Identifier
	On          *ObjectName
	KeyParts    []Expression
	WithOptions []*Option
	IfNotExists bool
}

func (s *CreateIndexStatement) statementNode()       {}
func (s *CreateIndexStatement) TokenLiteral() string { return s.Token.Literal }
func (s *CreateIndexStatement) String() string {
	var out strings.Builder
	out.WriteString("CREATE INDEX ")
	if s.IfNotExists {
		out.WriteString("IF NOT EXISTS ")
	}
	out.WriteString(s.Name.Value)
	out.WriteString(" ON ")
	out.WriteString(s.On.String())
	out.WriteString(" (")
	for i, k := range s.KeyParts {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(k.String())
	}
	out.WriteString(")")
	if len(s.WithOptions) > 0 {
		out.WriteString(" ")
		out.WriteString(optionsString(s.WithOptions))
	}
	return out.String()
}

// CreateTypeStatement represents CREATE TYPE ... AS LIST WITH (...). The
// referenced element type lives in the option values.
type CreateTypeStatement struct {
	Token       token.Token
	Name        *ObjectName
	Variant     string // "LIST"
	WithOptions []*Option
}

func (s *CreateTypeStatement) statementNode()       {}
func (s *CreateTypeStatement) TokenLiteral() string { return s.Token.Literal }
func (s *CreateTypeStatement) String() string {
	var out strings.Builder
	out.WriteString("CREATE TYPE ")
	out.WriteString(s.Name.String())
	out.WriteString(" AS ")
	out.WriteString(s.Variant)
	if len(s.WithOptions) > 0 {
		out.WriteString(" ")
		out.WriteString(optionsString(s.WithOptions))
	}
	return out.String()
}

// Connector is the external system half of a source or sink definition.
type Connector interface {
	Node
	connectorNode()
}

// FileConnector reads from or writes to a local file.
type FileConnector struct {
	Token token.Token
	Path  string
}

func (fc *FileConnector) connectorNode()       {}
func (fc *FileConnector) TokenLiteral() string { return fc.Token.Literal }
func (fc *FileConnector) String() string {
	return "FILE '" + strings.ReplaceAll(fc.Path, "'", "''") + "'"
}

// KafkaConnector reads from or writes to a Kafka topic.
type KafkaConnector struct {
	Token  token.Token
	Broker string
	Topic  string
}

func (kc *KafkaConnector) connectorNode()       {}
func (kc *KafkaConnector) TokenLiteral() string { return kc.Token.Literal }
func (kc *KafkaConnector) String() string {
	return "KAFKA BROKER '" + strings.ReplaceAll(kc.Broker, "'", "''") +
		"' TOPIC '" + strings.ReplaceAll(kc.Topic, "'", "''") + "'"
}

// CreateSourceStatement represents CREATE SOURCE.
type CreateSourceStatement struct {
	Token        token.Token
	Name         *ObjectName
	Connector    Connector
	WithOptions  []*Option
	Format       *Identifier
	Materialized bool
	IfNotExists  bool
}

func (s *CreateSourceStatement) statementNode()       {}
func (s *CreateSourceStatement) TokenLiteral() string { return s.Token.Literal }
func (s *CreateSourceStatement) String() string {
	var out strings.Builder
	out.WriteString("CREATE ")
	if s.Materialized {
		out.WriteString("MATERIALIZED ")
	}
	out.WriteString("SOURCE ")
	if s.IfNotExists {
		out.WriteString("IF NOT EXISTS ")
	}
	out.WriteString(s.Name.String())
	out.WriteString(" FROM ")
	out.WriteString(s.Connector.String())
	if len(s.WithOptions) > 0 {
		out.WriteString(" ")
		out.WriteString(optionsString(s.WithOptions))
	}
	if s.Format != nil {
		out.WriteString(" FORMAT ")
		out.WriteString(s.Format.Value)
	}
	return out.String()
}

// CreateSinkStatement represents CREATE SINK.
type CreateSinkStatement struct {
	Token       token.Token
	Name        *ObjectName
	From        *ObjectName
	Connector   Connector
	WithOptions []*Option
	Format      *Identifier
	IfNotExists bool
}

func (s *CreateSinkStatement) statementNode()       {}
func (s *CreateSinkStatement) TokenLiteral() string { return s.Token.Literal }
func (s *CreateSinkStatement) String() string {
	var out strings.Builder
	out.WriteString("CREATE SINK ")
	if s.IfNotExists {
		out.WriteString("IF NOT EXISTS ")
	}
	out.WriteString(s.Name.String())
	out.WriteString(" FROM ")
	out.WriteString(s.From.String())
	out.WriteString(" INTO ")
	out.WriteString(s.Connector.String())
	if len(s.WithOptions) > 0 {
		out.WriteString(" ")
		out.WriteString(optionsString(s.WithOptions))
	}
	if s.Format != nil {
		out.WriteString(" FORMAT ")
		out.WriteString(s.Format.Value)
	}
	return out.String()
}

// Package token defines the lexical tokens of halcyon's SQL dialect.
package token

// Type identifies the kind of a token.
type Type string

// Token is a single lexical token with its source position.
type Token struct {
	Type    Type
	Literal string
	Line    int
	Column  int
}

const (
	ILLEGAL Type = "ILLEGAL"
	EOF     Type = "EOF"

	// Identifiers and literals
	IDENT  Type = "IDENT"
	NUMBER Type = "NUMBER"
	STRING Type = "STRING"

	// Operators
	EQ       Type = "="
	NEQ      Type = "<>"
	LT       Type = "<"
	LTE      Type = "<="
	GT       Type = ">"
	GTE      Type = ">="
	PLUS     Type = "+"
	MINUS    Type = "-"
	ASTERISK Type = "*"
	SLASH    Type = "/"
	PERCENT  Type = "%"
	CONCAT   Type = "||"
	DBLCOLON Type = "::"

	// Delimiters
	COMMA     Type = ","
	SEMICOLON Type = ";"
	LPAREN    Type = "("
	RPAREN    Type = ")"
	DOT       Type = "."

	// Keywords
	CREATE       Type = "CREATE"
	TABLE        Type = "TABLE"
	VIEW         Type = "VIEW"
	INDEX        Type = "INDEX"
	TYPE         Type = "TYPE"
	SOURCE       Type = "SOURCE"
	SINK         Type = "SINK"
	MATERIALIZED Type = "MATERIALIZED"
	TEMPORARY    Type = "TEMPORARY"
	TEMP         Type = "TEMP"
	IF           Type = "IF"
	EXISTS       Type = "EXISTS"
	AS           Type = "AS"
	SELECT       Type = "SELECT"
	DISTINCT     Type = "DISTINCT"
	FROM         Type = "FROM"
	WHERE        Type = "WHERE"
	GROUP        Type = "GROUP"
	BY           Type = "BY"
	HAVING       Type = "HAVING"
	ORDER        Type = "ORDER"
	ASC          Type = "ASC"
	DESC         Type = "DESC"
	LIMIT        Type = "LIMIT"
	JOIN         Type = "JOIN"
	INNER        Type = "INNER"
	LEFT         Type = "LEFT"
	RIGHT        Type = "RIGHT"
	FULL         Type = "FULL"
	OUTER        Type = "OUTER"
	CROSS        Type = "CROSS"
	ON           Type = "ON"
	AND          Type = "AND"
	OR           Type = "OR"
	NOT          Type = "NOT"
	IS           Type = "IS"
	NULL         Type = "NULL"
	TRUE         Type = "TRUE"
	FALSE        Type = "FALSE"
	CAST         Type = "CAST"
	CASE         Type = "CASE"
	WHEN         Type = "WHEN"
	THEN         Type = "THEN"
	ELSE         Type = "ELSE"
	END          Type = "END"
	WITH         Type = "WITH"
	DEFAULT      Type = "DEFAULT"
	INTO         Type = "INTO"
	LIST         Type = "LIST"
	FILE         Type = "FILE"
	KAFKA        Type = "KAFKA"
	BROKER       Type = "BROKER"
	TOPIC        Type = "TOPIC"
	FORMAT       Type = "FORMAT"
)

// keywords maps upper-cased identifier text to keyword token types.
var keywords = map[string]Type{
	"CREATE":       CREATE,
	"TABLE":        TABLE,
	"VIEW":         VIEW,
	"INDEX":        INDEX,
	"TYPE":         TYPE,
	"SOURCE":       SOURCE,
	"SINK":         SINK,
	"MATERIALIZED": MATERIALIZED,
	"TEMPORARY":    TEMPORARY,
	"TEMP":         TEMP,
	"IF":           IF,
	"EXISTS":       EXISTS,
	"AS":           AS,
	"SELECT":       SELECT,
	"DISTINCT":     DISTINCT,
	"FROM":         FROM,
	"WHERE":        WHERE,
	"GROUP":        GROUP,
	"BY":           BY,
	"HAVING":       HAVING,
	"ORDER":        ORDER,
	"ASC":          ASC,
	"DESC":         DESC,
	"LIMIT":        LIMIT,
	"JOIN":         JOIN,
	"INNER":        INNER,
	"LEFT":         LEFT,
	"RIGHT":        RIGHT,
	"FULL":         FULL,
	"OUTER":        OUTER,
	"CROSS":        CROSS,
	"ON":           ON,
	"AND":          AND,
	"OR":           OR,
	"NOT":          NOT,
	"IS":           IS,
	"NULL":         NULL,
	"TRUE":         TRUE,
	"FALSE":        FALSE,
	"CAST":         CAST,
	"CASE":         CASE,
	"WHEN":         WHEN,
	"THEN":         THEN,
	"ELSE":         ELSE,
	"END":          END,
	"WITH":         WITH,
	"DEFAULT":      DEFAULT,
	"INTO":         INTO,
	"LIST":         LIST,
	"FILE":         FILE,
	"KAFKA":        KAFKA,
	"BROKER":       BROKER,
	"TOPIC":        TOPIC,
	"FORMAT":       FORMAT,
}

// LookupIdent returns the keyword type for upper-cased ident text,
// or IDENT if the text is not a keyword.
func LookupIdent(upper string) Type {
	if t, ok := keywords[upper]; ok {
		return t
	}
	return IDENT
}

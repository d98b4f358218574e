package ast

// Mutator receives in-place mutation hooks while Walk* functions drive the
// recursive descent. Implementations embed NopMutator and override only the
// node kinds they care about; everything else is descended into unchanged.
//
// Hooks fire before descent, so a hook that replaces substructure still has
// the replacement visited.
type Mutator interface {
	// MutateDataType is called for every data-type node, including the
	// element types of list constructors.
	MutateDataType(dt DataType)

	// MutateFunction is called for every function-call expression.
	MutateFunction(fn *FunctionCall)

	// MutateTableFactor is called for every FROM-clause factor, including
	// both sides of a join.
	MutateTableFactor(tf TableFactor)

	// MutateOption is called for every WITH-clause option.
	MutateOption(opt *Option)
}

// NopMutator provides no-op defaults for every Mutator hook.
type NopMutator struct{}

func (NopMutator) MutateDataType(DataType)       {}
func (NopMutator) MutateFunction(*FunctionCall)  {}
func (NopMutator) MutateTableFactor(TableFactor) {}
func (NopMutator) MutateOption(*Option)          {}

// WalkDataType visits a data type and its element types.
func WalkDataType(m Mutator, dt DataType) {
	if dt == nil {
		return
	}
	m.MutateDataType(dt)
	switch t := dt.(type) {
	case *NamedType:
		for _, a := range t.Args {
			WalkExpr(m, a)
		}
	case *ListType:
		WalkDataType(m, t.Element)
	}
}

// WalkExpr visits an expression tree.
func WalkExpr(m Mutator, expr Expression) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *PrefixExpression:
		WalkExpr(m, e.Right)
	case *InfixExpression:
		WalkExpr(m, e.Left)
		WalkExpr(m, e.Right)
	case *IsNullExpression:
		WalkExpr(m, e.Expr)
	case *FunctionCall:
		m.MutateFunction(e)
		for _, a := range e.Args {
			WalkExpr(m, a)
		}
	case *CastExpression:
		WalkExpr(m, e.Expr)
		WalkDataType(m, e.Type)
	case *CaseExpression:
		WalkExpr(m, e.Operand)
		for _, w := range e.Whens {
			WalkExpr(m, w.Condition)
			WalkExpr(m, w.Result)
		}
		WalkExpr(m, e.Else)
	case *SubqueryExpression:
		WalkQuery(m, e.Query)
	}
	// Identifiers, column refs and literals have no substructure.
}

// WalkQuery visits a full query body.
func WalkQuery(m Mutator, q *SelectStatement) {
	if q == nil {
		return
	}
	for _, item := range q.Items {
		if !item.Star {
			WalkExpr(m, item.Expr)
		}
	}
	for _, f := range q.From {
		WalkTableFactor(m, f)
	}
	WalkExpr(m, q.Where)
	for _, g := range q.GroupBy {
		WalkExpr(m, g)
	}
	WalkExpr(m, q.Having)
	for _, ob := range q.OrderBy {
		WalkExpr(m, ob.Expr)
	}
	WalkExpr(m, q.Limit)
}

// WalkTableFactor visits one FROM-clause factor.
func WalkTableFactor(m Mutator, tf TableFactor) {
	if tf == nil {
		return
	}
	m.MutateTableFactor(tf)
	switch f := tf.(type) {
	case *TableFunction:
		for _, a := range f.Args {
			WalkExpr(m, a)
		}
	case *DerivedTable:
		WalkQuery(m, f.Query)
	case *JoinedTable:
		WalkTableFactor(m, f.Left)
		WalkTableFactor(m, f.Right)
		WalkExpr(m, f.On)
	}
}

// WalkColumnDef visits one column definition.
func WalkColumnDef(m Mutator, cd *ColumnDef) {
	if cd == nil {
		return
	}
	WalkDataType(m, cd.Type)
	WalkExpr(m, cd.Default)
}

// WalkOption visits one WITH-clause option and any type it names.
func WalkOption(m Mutator, opt *Option) {
	if opt == nil {
		return
	}
	m.MutateOption(opt)
	if tv, ok := opt.Value.(*TypeValue); ok {
		WalkDataType(m, tv.Type)
	}
}

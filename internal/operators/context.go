package operators

import "context"

// Operator identifies the human operator behind an authenticated request.
type Operator struct {
	ID   string
	Name string
}

type ctxKey string

const operatorKey ctxKey = "omnidesk.operator"

// WithOperator stores the operator in context.
func WithOperator(ctx context.Context, op Operator) context.Context {
	return context.WithValue(ctx, operatorKey, op)
}

// FromContext extracts the operator if present.
func FromContext(ctx context.Context) (Operator, bool) {
	val := ctx.Value(operatorKey)
	if val == nil {
		return Operator{}, false
	}
	op, ok := val.(Operator)
	return op, ok && op.ID != ""
}

package main

import (
	"context"
	"net/http"

	"github.com/kickbu2towski/breakout-api/internal/data"
)

type contextKey string

const operatorContextKey = contextKey("operator")

func (app *application) setOperatorContext(r *http.Request, op *data.Operator) *http.Request {
	ctx := context.WithValue(r.Context(), operatorContextKey, op)
	return r.WithContext(ctx)
}

func (app *application) getOperatorContext(r *http.Request) *data.Operator {
	op, ok := r.Context().Value(operatorContextKey).(*data.Operator)
	if !ok {
		panic("missing required operator context")
	}
	return op
}

// Package net provides utilities for working with request contexts
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ctxKey is an unexported key type for context values
type ctxKey string

const (
	keyClientIP ctxKey = "client_ip"
	keyPayer    ctxKey = "payer"
)

// WithRequest annotates context with the request id and the resolved client ip
func WithRequest(ctx context.Context, reqID, clientIP string) context.Context {
	if reqID != "" {
		// set chi RequestID so chimw.GetReqID can retrieve it
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	}
	if clientIP != "" {
		ctx = context.WithValue(ctx, keyClientIP, clientIP)
	}
	return ctx
}

// WithPayer annotates context with the sender of the payment that unlocked the request
func WithPayer(ctx context.Context, payer string) context.Context {
	if payer != "" {
		ctx = context.WithValue(ctx, keyPayer, payer)
	}
	return ctx
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// ClientIP returns the client ip on the context if present
func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(keyClientIP).(string)
	return v
}

// Payer returns the paying account on the context if present
func Payer(ctx context.Context) string {
	v, _ := ctx.Value(keyPayer).(string)
	return v
}

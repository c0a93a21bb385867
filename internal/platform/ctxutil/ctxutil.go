// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/aulagate/internal/platform/ctxkey"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}

// # Identity

// WithClientID returns a new context carrying the client identifier.
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyClientID, clientID)
}

// GetClientID retrieves the client identifier from the context.
// Returns an empty string if not found.
func GetClientID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyClientID).(string)
	return id
}

// RequestInfo is filled in by downstream middleware once the client and its
// session are known, so the access log written on the way out can include them.
//
// It is owned by a single request and is not safe for concurrent use.
type RequestInfo struct {
	ClientID string
	UserID   string
	Role     string
}

// WithRequestInfo attaches an empty [RequestInfo] and returns it for later reading.
func WithRequestInfo(ctx context.Context) (context.Context, *RequestInfo) {
	info := &RequestInfo{}
	return context.WithValue(ctx, ctxkey.KeyRequestInfo, info), info
}

// GetRequestInfo returns the request's [RequestInfo], or nil outside the logging middleware.
func GetRequestInfo(ctx context.Context) *RequestInfo {
	info, _ := ctx.Value(ctxkey.KeyRequestInfo).(*RequestInfo)
	return info
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/aulagate/internal/platform/ctxutil"
)

/*
TestContext_RequestID verifies that Request IDs can be injected and retrieved.
*/
func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()
	requestID := "test-request-id"

	// 1. Initially should be empty
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithRequestID(ctx, requestID)
	assert.Equal(t, requestID, ctxutil.GetRequestID(ctx))
}

/*
TestContext_Logger verifies that a custom logger can be stored in context.
*/
func TestContext_Logger(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// 1. Initially should return the default logger
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithLogger(ctx, logger)
	assert.Equal(t, logger, ctxutil.GetLogger(ctx))
}

/*
TestContext_RequestInfo verifies that downstream writes are visible upstream.
*/
func TestContext_RequestInfo(t *testing.T) {
	ctx := context.Background()

	// 1. Initially should be nil
	assert.Nil(t, ctxutil.GetRequestInfo(ctx))

	// 2. Attach, then mutate through the context
	ctx, info := ctxutil.WithRequestInfo(ctx)
	downstream := ctxutil.GetRequestInfo(ctx)
	require.NotNil(t, downstream)

	downstream.ClientID = "client-1"
	downstream.Role = "Maestro"

	assert.Equal(t, "client-1", info.ClientID)
	assert.Equal(t, "Maestro", info.Role)
}

/*
TestContext_ClientID verifies that client identifiers can be injected and retrieved.
*/
func TestContext_ClientID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ctxutil.GetClientID(ctx))

	ctx = ctxutil.WithClientID(ctx, "0190b3a4-7f1e-7cc2-9d3b-1a2b3c4d5e6f")
	assert.Equal(t, "0190b3a4-7f1e-7cc2-9d3b-1a2b3c4d5e6f", ctxutil.GetClientID(ctx))
}

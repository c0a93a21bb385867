// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"

	"github.com/taibuivan/aulagate/internal/platform/ctxkey"
)

// NewContext returns a copy of ctx carrying service.
func NewContext(ctx context.Context, service *Service) context.Context {
	return context.WithValue(ctx, ctxkey.KeySession, service)
}

// FromContext returns the client's [Service], or nil outside the client session middleware.
func FromContext(ctx context.Context) *Service {
	service, _ := ctx.Value(ctxkey.KeySession).(*Service)
	return service
}

// Copyright (c) 2026 Comicshelf. All rights reserved.
// Author: lin.kaiwen.tw@gmail.com

// Package ctxkey defines the private key types used for storing values
// in [context.Context].
//
// Using unexported key types prevents collisions with context values set
// by third-party packages.
package ctxkey

// ctxKey is the private type for all context keys in this application.
type ctxKey string

const (
	// KeyRequestID stores the correlation ID of the current request.
	KeyRequestID ctxKey = "request_id"

	// KeyLogger stores the request-scoped [*slog.Logger].
	KeyLogger ctxKey = "logger"
)

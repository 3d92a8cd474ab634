// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package server runs the transport servers of the auth service.
//
// It owns the lifecycle of the HTTP API, the gRPC health endpoint and the
// background workers: startup, signal handling and graceful shutdown.
package server

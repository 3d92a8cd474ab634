// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package http implements the REST surface of the auth service.
//
// It wires the chi router under /api/v1/auth, decodes request bodies,
// authenticates bearer tokens and maps service failures to status codes and
// the uniform error body. Tracing, access logging, CORS, per-client
// throttling and request metrics are handled here before requests reach the
// service layer.
package http

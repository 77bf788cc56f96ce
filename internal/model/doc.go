package model

// Package model defines domain data structures used across the service:
// the platform enumeration with per-platform request configuration, download
// and conversion tasks, status enums, and the request error taxonomy the
// HTTP layer maps onto status codes.

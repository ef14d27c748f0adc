// Package broker implements the long-lived local service that pools
// device sessions for the D2D lane: one transport per device, serialized
// per-device execution, and command-output caching. It speaks a framed
// newline-delimited JSON protocol over a Unix-domain socket, and embeds
// internal/services.BaseService for its lifecycle.
package broker

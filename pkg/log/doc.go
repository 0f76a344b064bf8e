// Package log provides the logging abstraction used across discline.
//
// Library code (gateway, rest, session) accepts a Logger and defaults to
// NoopLogger. The CLI wires a ZerologAdapter:
//
//	level, _ := log.ParseLevel("debug")
//	logger := log.NewConsoleLogger(os.Stderr, level)
//	conn, err := gateway.Connect(ctx, token, url, gateway.WithLogger(logger))
package log

// Package config loads lokation server configuration.
//
// Configuration lives in lokation.json, lokation.toml or lokation.yaml
// (checked in that order) at the project root. Durations are strings in
// time.ParseDuration syntax.
//
// # Configuration File Structure
//
//	[server]
//	address = ":8080"
//	title = "lokation"
//	forceFragment = false
//	defaultFragment = "/"
//	shutdownTimeout = "30s"
//
//	[server.session]
//	handshakeTimeout = "5s"
//	readTimeout = "60s"
//	writeTimeout = "10s"
//	heartbeatInterval = "25s"
//	eventQueueSize = 64
//
//	[log]
//	level = "info"
//	format = "text"
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sc, err := cfg.ServerConfig()
package config

// Package client talks to a running vault server. The CLI uses it to ask
// the server's gRPC health endpoint how the server and each store are doing.
package client

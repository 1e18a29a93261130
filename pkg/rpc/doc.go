// Package rpc exposes the session message surface as named methods with map arguments.
//
// Transports (HTTP, MCP) decode a request into a method name and an argument
// map and hand both to a Dispatcher; results are plain data or boundary handles
// that marshal to {"$ref": ...} markers.
package rpc

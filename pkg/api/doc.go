// Package api defines the wire types for the chat-completions surface
// exposed by the duckgate gateway, the error taxonomy with its HTTP
// status mapping, completion ID generation, request validation, and the
// static model catalog.
//
// These are pure data types with no behavior beyond construction and
// validation; they are shared by the transport layer, the gateway
// engine, and the backend adapter.
package api

// Package backend is the REST client for the remote CyLink API. It owns the
// wire types and the translation from HTTP status codes into sentinel
// errors; policy — fallback ordering, throttling, click dispatch — lives in
// the root cylink package.
//
// Every method takes a context and performs exactly one request. The client
// never retries; the engine decides what a failure means.
package backend

// Package handlers exposes the reconciliation engine's operation surface over
// HTTP. Handlers never mutate collections directly; every write goes through
// the engine.
package handlers

import "github.com/cestino/shopping-service/internal/engine"

var eng *engine.Engine

// Init wires the engine the handlers operate on. Must be called before any
// route is served.
func Init(e *engine.Engine) {
	eng = e
}

// Package agent defines the canonical data model shared by every part of
// the runtime kernel: identifiers, content, memories, the room/world/entity
// environment, character configuration, per-message state, the
// action/provider/evaluator/service capability interfaces, plugins, event
// payloads, and the storage-adapter and model-handler contracts the kernel
// consumes.
//
// Nothing in this package depends on a concrete storage backend, model
// provider, or transport. It is the leaf of the dependency graph: every
// other kernel package imports it, it imports nothing from them.
package agent

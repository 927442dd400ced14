// package tasks implements the screenshot organizer run against an Immich server.
//
// The core abstraction is Organizer, which plans a reconciliation (probe the
// server, fetch candidate assets, classify them) and applies it (create
// missing albums, add members in chunks, archive). Operations emit progress
// updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

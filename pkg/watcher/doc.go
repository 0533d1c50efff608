// Package watcher adapts filesystem notifications into asset change events.
//
// It is a thin collaborator around fsnotify: changed paths are classified by
// asset kind and change status and handed to the embedding application,
// which feeds them to the engine. The engine core itself never touches the
// filesystem.
package watcher

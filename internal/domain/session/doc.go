// Package session manages switcher sessions.
//
// A session is one shell view with its own app switcher. Each session owns
// a Switcher that keeps the user's order for as long as the session lives.
// Nothing is persisted; closing a session discards its order.
//
// Lifecycle:
//  1. Create: allocate a sess_* id and a Switcher
//  2. Watch: reconcile against the installed apps, then follow every change
//  3. Close: drop the app subscription and all render listeners
//
// Example Usage:
//
//	manager := session.NewManager(appManager, logger).WithMetrics(metrics)
//	sess := manager.Create()
//	sess.Switcher().Reorder(types.ReorderEvent{MovedID: "users", FromIndex: 0, ToIndex: 2})
//	manager.Close(sess.ID())
package session

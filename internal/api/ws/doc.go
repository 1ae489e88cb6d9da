// Package ws streams switcher renders to clients over WebSocket.
//
// Each connection is bound to one session. The server sends the current
// projection on connect and every render after that. Clients report drag
// gestures; only drag_end changes the order.
//
// Message Types:
//   - render: {"type": "render", "projection": {...}}
//   - error: {"type": "error", "code": "invalid_reorder_index", "message": "..."}
//   - pong: reply to ping
//
// Inbound:
//   - drag_start, drag_update: {"type": "drag_start", "moved_id": "users", "index": 2}
//   - drag_end: {"type": "drag_end", "moved_id": "users", "from_index": 2, "to_index": 0}
//   - ping
//
// Renders are coalesced per connection: a slow client skips intermediate
// projections and always receives the latest one.
package ws

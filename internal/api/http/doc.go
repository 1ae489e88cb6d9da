// Package http provides the REST handlers for apps and switcher sessions.
//
// Routes:
//   - GET  /, /health: service status and metrics snapshot
//   - GET|POST /apps, DELETE /apps/:id, POST /apps/:id/focus: installed apps
//   - POST|GET /sessions, DELETE /sessions/:id: switcher sessions
//   - GET  /sessions/:id/switcher: current projection
//   - POST /sessions/:id/switcher/reorder: apply a finished drag
//
// A rejected reorder is not a server failure. It answers 200 with
// applied=false, an error code and the unchanged projection so the client
// can re-render.
package http

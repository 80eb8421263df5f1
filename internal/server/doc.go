// Package server serves the web studio: an HTML editor with live preview,
// dimension presets, format selection and export over HTTP.
//
// One Server holds one editing session. The shared AppState is updated
// through the same reducer the library exposes (POST /api/actions), and
// exports deliver the artifact as an attachment (POST /api/export). Status
// transitions are pushed to the page over server-sent events.
//
// Routes:
//
//	GET  /                    studio page
//	GET  /healthz             liveness
//	GET  /api/presets         preset groups
//	GET  /api/presets/match   reconciled label for ?width=&height=
//	GET  /api/state           current state view
//	POST /api/actions         apply one reducer action
//	POST /api/export          export the current state (409 while busy)
//	GET  /api/status          current export status
//	GET  /api/status/stream   status transitions (SSE)
//	POST /api/preview         scaled PNG preview (?maxWidth=&maxHeight=)
//	POST /api/overlay         full-size PNG for the expanded view
package server

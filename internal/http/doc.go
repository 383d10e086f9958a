// Package http provides HTTP handlers and middleware for the workspace
// booking API.
//
// The router exposes the following endpoints under /api/v1:
//   - POST /bookings: creates a reservation. Body: {"room_id","date",
//     "start_time","end_time"} plus exactly one of "user_id"/"team_id".
//     Declined requests return a stable "reason" code; capacity rejections
//     include the current/requested/limit detail.
//   - GET /bookings?status=&page=&page_size=: lists reservations, newest
//     first, paginated.
//   - POST /bookings/{id}/cancel: transitions a reservation to cancelled.
//     Cancelling twice reports already_cancelled.
//   - GET /rooms/available?slot=HH-HH&date=&kind=: rooms that could accept
//     a booking for the slot. An empty list is a 200, not an error.
//   - GET /rooms?kind=, POST /rooms: room catalog. Creation is meant for
//     provisioning; rooms are immutable once created.
//   - GET /teams, POST /teams: team registry with derived size metrics.
//   - GET /users, POST /users: user registry.
//   - GET /health: liveness and storage reachability.
//
// Request/response DTOs live alongside their respective handlers so tests
// and documentation share the same ground truth.
package http

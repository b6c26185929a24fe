// Package websocket provides real-time state updates for game
// sessions.
//
// The Hub tracks connected clients per session id and pushes a full
// ViewState snapshot whenever the REST API mutates a session. Several
// devices can watch the same quest: a phone walking the grid and a
// laptop showing the gallery both receive every update. The socket is
// one-way for game data; inputs always travel through the REST API so
// all mutations funnel through the service layer.
package websocket

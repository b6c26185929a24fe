// Package api provides the REST API server for the Gift Quest game.
//
// The server exposes the QuestService over HTTP using gorilla/mux:
//
//	POST   /api/sessions                session create (optional id, quest, date)
//	GET    /api/sessions                list sessions, sortable
//	GET    /api/sessions/{id}           session info
//	DELETE /api/sessions/{id}           drop session (keeps stored progress)
//	GET    /api/sessions/{id}/state     render-ready view state
//	POST   /api/sessions/{id}/move      one movement attempt
//	POST   /api/sessions/{id}/answer    riddle answer submission
//	POST   /api/sessions/{id}/navigate  hub / gallery / close_riddle
//	POST   /api/sessions/{id}/reset     wipe solved progress
//	GET    /api/quests                  available quest configs
//	GET    /api/quests/{name}           one quest config
//	POST   /api/quests                  save a quest config
//	GET    /ws?session={id}             WebSocket state updates
//
// Every state-changing handler broadcasts the fresh view state to the
// session's WebSocket clients, so other devices watching the same
// session stay in sync.
package api

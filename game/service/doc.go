// Package service provides the business logic layer for the Gift Quest
// game.
//
// QuestService is the single contract every transport talks to: the
// REST API, the WebSocket hub and the MCP tools all call the same
// methods. It coordinates the session manager and the quest catalog,
// and serializes game operations per service so concurrent transports
// never interleave mutations on one engine.
//
// The service also owns the boundary where "today" is resolved: a
// session is created with an explicit date or with the server's current
// day, and the engine runs against that injected date from then on.
package service

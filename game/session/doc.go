// Package session manages active game sessions.
//
// A session pairs a short shareable id with one running engine.
// Sessions are in-memory and expendable: an idle session can be
// cleaned up at any time because the only state worth keeping, the
// player's solved levels, lives in the progress store keyed by the
// session id. Creating a session under a previously used id resumes
// that progress.
//
// Ids are case-insensitive and default to four random hex characters,
// short enough to type into another device.
package session

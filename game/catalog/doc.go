// Package catalog loads and caches quest configurations from JSON
// files.
//
// The Manager reads quest definitions from a config directory, runs
// them through engine.ValidateQuest before they are ever playable, and
// caches parsed quests by name. A default quest is resolved at startup:
// default.json if present, otherwise the first loadable quest in the
// directory, otherwise the built-in engine.DefaultQuest. SaveQuest
// writes authored quests back out with the same validation gate.
package catalog

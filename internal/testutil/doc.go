// Package testutil provides deterministic fixtures for orchestrator tests:
// content loading, counting resource records, recording managers, a
// scripted asset loader and fixed run ids.
package testutil

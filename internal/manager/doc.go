// Package manager holds long-lived managers that live outside the tick
// pipeline.
//
// The Registry owns a fixed, ordered list of slots built from factories.
// On every new scene each slot's manager may hand back a replacement; the
// registry installs it, destroys the discarded instance and stamps the slot
// with the scene name.
package manager

package event

import "github.com/zhanong/ecsframework/internal/scene"

// Request asks for a transition to Scene. It is consumed within the tick it
// is dispatched and never persisted.
type Request struct {
	Scene scene.ID
}

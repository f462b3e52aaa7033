// Package story contains the authored scenario graph models.
// Scenarios are immutable after authoring; the engine only reads them.
package story

// CompassChange is the axis effect attached to a single branch,
// applied when the player takes that branch.
type CompassChange struct {
	Axis  string  `koanf:"axis"`
	Delta float64 `koanf:"delta"`
}

// Branch is one selectable choice out of a scene. A branch without a
// resolvable next scene is a terminal leaf.
type Branch struct {
	CompassChange *CompassChange `koanf:"compass_change"`
	NextSceneID   string         `koanf:"next_scene_id"`
}

// Scene is a node in the scenario graph. Branching scenes carry Branches;
// linear scenes carry only NextSceneID and no compass effect.
type Scene struct {
	ID          string   `koanf:"id"`
	NextSceneID string   `koanf:"next_scene_id"`
	Branches    []Branch `koanf:"branches"`
}

// Scenario is one authored interactive story. The first scene in authoring
// order is the entry point; there is no explicit start marker.
type Scenario struct {
	ID     string  `koanf:"id"`
	Title  string  `koanf:"title"`
	Scenes []Scene `koanf:"scenes"`
}

// SceneIndex builds an ID -> Scene lookup for traversal.
func (s *Scenario) SceneIndex() map[string]*Scene {
	idx := make(map[string]*Scene, len(s.Scenes))
	for i := range s.Scenes {
		idx[s.Scenes[i].ID] = &s.Scenes[i]
	}
	return idx
}

// ContentBundle groups scenarios whose path scores are pooled together
// when calibrating badge thresholds.
type ContentBundle struct {
	ID          string   `koanf:"id"`
	ScenarioIDs []string `koanf:"scenario_ids"`
}

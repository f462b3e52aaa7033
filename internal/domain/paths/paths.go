// Package paths enumerates every distinct playthrough of a scenario graph
// together with the per-axis score a player would accumulate along it.
//
// The walk is a depth-first recursion with a visited set copied at each
// branch point. Sharing one mutable set would wrongly prune sibling branches
// that revisit a scene the current branch already consumed; copying keeps
// cycle detection local to the path being explored. A revisited scene
// truncates the path and records whatever accumulated so far, so cyclic
// graphs always yield a finite path set.
package paths

import (
	"github.com/kerian/fable/internal/domain/axis"
	"github.com/kerian/fable/internal/domain/story"
)

// Enumerate returns the axis score map of every distinct path through the
// scenario, starting from the first scene in authoring order. A scenario
// with no scenes yields no paths. Pure function; the scenario is not
// modified.
func Enumerate(scenario *story.Scenario) []axis.Scores {
	if scenario == nil || len(scenario.Scenes) == 0 {
		return nil
	}
	w := &walker{index: scenario.SceneIndex()}
	w.visit(&scenario.Scenes[0], axis.NewScores(), map[string]struct{}{})
	return w.paths
}

type walker struct {
	index map[string]*story.Scene
	paths []axis.Scores
}

func (w *walker) visit(scene *story.Scene, acc axis.Scores, visited map[string]struct{}) {
	if _, seen := visited[scene.ID]; seen {
		// Cycle: truncate here, the path still counts.
		w.record(acc)
		return
	}
	visited[scene.ID] = struct{}{}

	switch {
	case len(scene.Branches) > 0:
		for i := range scene.Branches {
			branch := &scene.Branches[i]
			scores := acc.Clone()
			if cc := branch.CompassChange; cc != nil {
				scores.Add(axis.Normalize(cc.Axis), cc.Delta)
			}
			next, ok := w.index[branch.NextSceneID]
			if !ok {
				// Dangling or absent next scene: terminal leaf.
				w.record(scores)
				continue
			}
			w.visit(next, scores, cloneVisited(visited))
		}
	case scene.NextSceneID != "":
		if next, ok := w.index[scene.NextSceneID]; ok {
			// Linear scenes carry no compass change.
			w.visit(next, acc, visited)
			return
		}
		w.record(acc)
	default:
		w.record(acc)
	}
}

func (w *walker) record(scores axis.Scores) {
	w.paths = append(w.paths, scores)
}

func cloneVisited(visited map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(visited))
	for id := range visited {
		out[id] = struct{}{}
	}
	return out
}

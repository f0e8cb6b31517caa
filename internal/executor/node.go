package executor

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/vk/factorgrid/internal/planner"
	"github.com/vk/factorgrid/internal/resultstore"
)

// node is the runtime wrapper of one plan stage.
type node struct {
	stage      planner.Stage
	deps       []*node
	dependents []*node

	depCount atomic.Int32
	state    atomic.Int32
	skipOnce sync.Once

	err   error
	start time.Time
	end   time.Time
}

func (n *node) status() resultstore.Status {
	return resultstore.Status(n.state.Load())
}

func (n *node) setStatus(s resultstore.Status) {
	n.state.Store(int32(s))
}

func (n *node) dependOn(dep *node) {
	if dep == nil {
		return
	}
	for _, d := range n.deps {
		if d == dep {
			return
		}
	}
	n.deps = append(n.deps, dep)
	dep.dependents = append(dep.dependents, n)
	n.depCount.Add(1)
}

// buildNodes turns the stage list into a dependency graph. A stage waits for
// the previous stage of every lane it belongs to:
//   - the data lane of its join-group (Read and Join stages)
//   - the preparation lane of its (class, join-group)
//   - the intermediate lane of its factor
//
// Compute stages also wait for the Compute stages of their direct
// dependencies, and Persist stages for the Compute stages they write.
func buildNodes(stages []planner.Stage) []*node {
	nodes := make([]*node, 0, len(stages))
	lastData := make(map[string]*node)
	lastPrep := make(map[string]*node)
	lastMid := make(map[string]*node)
	compute := make(map[string]*node)

	for _, s := range stages {
		n := &node{stage: s}
		prepLane := s.Class + "@" + s.Group

		switch s.Kind {
		case planner.KindRead, planner.KindJoin:
			n.dependOn(lastData[s.Group])
			lastData[s.Group] = n
		case planner.KindClassPrep:
			n.dependOn(lastData[s.Group])
			n.dependOn(lastPrep[prepLane])
			lastPrep[prepLane] = n
		case planner.KindIntermediateFunc:
			n.dependOn(lastData[s.Group])
			n.dependOn(lastPrep[prepLane])
			n.dependOn(lastMid[s.Factor])
			lastMid[s.Factor] = n
		case planner.KindCompute:
			n.dependOn(lastData[s.Group])
			n.dependOn(lastPrep[prepLane])
			n.dependOn(lastMid[s.Factor])
			for _, dep := range s.Deps {
				n.dependOn(compute[dep])
			}
			compute[s.Factor] = n
		case planner.KindPersist:
			for _, f := range s.Factors {
				n.dependOn(compute[f])
			}
		}
		nodes = append(nodes, n)
	}
	return nodes
}

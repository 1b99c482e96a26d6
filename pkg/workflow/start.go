package workflow

import (
	"github.com/dukex/classflow/pkg/models"
	"github.com/dukex/classflow/pkg/nodes/trigger"
)

// startNode picks where a run begins. Manual runs prefer the manual trigger node; every
// other run, and a manual run without one, starts at the first trigger node.
func (e *Executor) startNode(wf *models.Workflow, triggeredBy string) *models.Node {
	if triggeredBy == models.TriggeredByManual {
		for _, node := range wf.Nodes {
			if node != nil && node.Data.NodeType() == trigger.ManualNodeType {
				return node
			}
		}
	}

	for _, node := range wf.Nodes {
		if node != nil && e.isTrigger(node) {
			return node
		}
	}

	return nil
}

func (e *Executor) isTrigger(node *models.Node) bool {
	return node.Type == models.NodeTypeTrigger ||
		node.Data.Category() == models.CategoryTrigger ||
		e.registry.IsTrigger(node.Data.NodeType())
}

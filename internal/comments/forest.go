// Package comments reconstructs the reply tree of a photo from the flat rows
// the repository returns. Rows are stored with a parent_id back-reference;
// the tree is rebuilt once per fetch rather than re-queried per node.
package comments

import (
	"github.com/familygallery/backend/internal/models"
)

// Node is one comment plus its direct replies, ordered the same way the
// input rows were (newest-first at every level).
type Node struct {
	models.Comment
	Replies []*Node `json:"replies"`
}

// BuildForest turns flat comment rows into a forest of threads. The arena is
// a map keyed by comment id plus an index from parent id to children; the
// walk starts at the parent-less roots and descends to unbounded depth.
//
// Rows whose parent id is missing from the input, or which point at
// themselves, are treated as roots instead of being dropped. Parent ids only
// ever reference strictly earlier rows, so no further cycle protection is
// needed.
func BuildForest(rows []models.Comment) []*Node {
	arena := make(map[string]*Node, len(rows))
	children := make(map[string][]string, len(rows))
	order := make([]string, 0, len(rows))

	for _, row := range rows {
		if _, ok := arena[row.ID]; ok {
			continue
		}
		arena[row.ID] = &Node{Comment: row}
		order = append(order, row.ID)
	}

	var rootIDs []string
	for _, id := range order {
		node := arena[id]
		parentID := node.ParentID
		if parentID == nil || *parentID == id {
			rootIDs = append(rootIDs, id)
			continue
		}
		if _, ok := arena[*parentID]; !ok {
			rootIDs = append(rootIDs, id)
			continue
		}
		children[*parentID] = append(children[*parentID], id)
	}

	var attach func(id string) *Node
	attach = func(id string) *Node {
		node := arena[id]
		for _, childID := range children[id] {
			node.Replies = append(node.Replies, attach(childID))
		}
		return node
	}

	forest := make([]*Node, 0, len(rootIDs))
	for _, id := range rootIDs {
		forest = append(forest, attach(id))
	}
	return forest
}

// Count returns the total number of comments in the forest, replies included.
func Count(forest []*Node) int {
	var total int
	for _, node := range forest {
		total += 1 + Count(node.Replies)
	}
	return total
}

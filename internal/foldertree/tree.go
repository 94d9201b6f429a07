// Package foldertree builds and queries the in-memory folder hierarchy.
//
// Everything here is a pure function of its input: trees are rebuilt from
// the flat folder list on every request and never cached or mutated after
// construction.
package foldertree

import (
	"slices"
	"strings"

	"noteshelf/internal/domain/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Build nests a flat list of one owner's folders into a forest of root nodes.
// Siblings are sorted by name (case-insensitive, locale-aware) at every level.
//
// A folder whose parent is missing from the input, or that sits on a parent
// cycle, is returned as a root rather than dropped.
func Build(folders []models.Folder) []*models.FolderTreeNode {
	nodes := make(map[string]*models.FolderTreeNode, len(folders))
	order := make([]string, 0, len(folders))
	for _, f := range folders {
		if _, dup := nodes[f.ID]; dup {
			continue
		}
		nodes[f.ID] = &models.FolderTreeNode{Folder: f, Children: []*models.FolderTreeNode{}}
		order = append(order, f.ID)
	}

	cyclic := cycleMembers(nodes)

	roots := make([]*models.FolderTreeNode, 0)
	for _, id := range order {
		node := nodes[id]
		parentID := node.Folder.ParentID
		if parentID == nil || cyclic[id] {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*parentID]
		if !ok {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	sortByName(roots, newNameComparator())
	return roots
}

// DanglingParents returns the folders that Build will promote to root even
// though they declare a parent: the parent is absent or the chain loops.
func DanglingParents(folders []models.Folder) []models.Folder {
	nodes := make(map[string]*models.FolderTreeNode, len(folders))
	for _, f := range folders {
		if _, dup := nodes[f.ID]; !dup {
			nodes[f.ID] = &models.FolderTreeNode{Folder: f}
		}
	}
	cyclic := cycleMembers(nodes)

	var out []models.Folder
	for _, f := range folders {
		if f.ParentID == nil {
			continue
		}
		if _, ok := nodes[*f.ParentID]; !ok || cyclic[f.ID] {
			out = append(out, f)
		}
	}
	return out
}

// cycleMembers reports the ids whose parent chain leads back to themselves.
func cycleMembers(nodes map[string]*models.FolderTreeNode) map[string]bool {
	cyclic := make(map[string]bool)
	for id := range nodes {
		current := nodes[id].Folder.ParentID
		for steps := 0; current != nil && steps <= len(nodes); steps++ {
			if *current == id {
				cyclic[id] = true
				break
			}
			next, ok := nodes[*current]
			if !ok {
				break
			}
			current = next.Folder.ParentID
		}
	}
	return cyclic
}

type nameComparator func(a, b *models.FolderTreeNode) int

// newNameComparator returns a comparator ignoring case and accents
// (collate.Loose). A collator is not safe for concurrent use, so each Build
// gets its own.
func newNameComparator() nameComparator {
	col := collate.New(language.Und, collate.Loose)
	return func(a, b *models.FolderTreeNode) int {
		if c := col.CompareString(a.Folder.Name, b.Folder.Name); c != 0 {
			return c
		}
		// Collation-equal names: fall back to a total order so output is stable
		if c := strings.Compare(strings.ToLower(a.Folder.Name), strings.ToLower(b.Folder.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.Folder.ID, b.Folder.ID)
	}
}

func sortByName(nodes []*models.FolderTreeNode, cmp nameComparator) {
	if len(nodes) == 0 {
		return
	}
	slices.SortStableFunc(nodes, cmp)
	for _, n := range nodes {
		sortByName(n.Children, cmp)
	}
}

// ParentOptions flattens the tree for a "choose parent folder" picker. Only
// folders shallow enough that a new child would still respect maxDepth are
// listed (depth <= maxDepth-2); with maxDepth 2 that is the root folders.
func ParentOptions(tree []*models.FolderTreeNode, maxDepth int) []models.ParentOption {
	out := make([]models.ParentOption, 0)
	collectParentOptions(tree, 0, maxDepth, &out)
	return out
}

func collectParentOptions(nodes []*models.FolderTreeNode, depth, maxDepth int, out *[]models.ParentOption) {
	maxParentDepth := maxDepth - 2
	for _, node := range nodes {
		if depth <= maxParentDepth {
			*out = append(*out, models.ParentOption{ID: node.Folder.ID, Name: node.Folder.Name, Depth: depth})
		}
		if len(node.Children) > 0 && depth+1 < maxDepth {
			collectParentOptions(node.Children, depth+1, maxDepth, out)
		}
	}
}

// Flatten walks the tree depth-first, parents before children.
func Flatten(tree []*models.FolderTreeNode) []models.Folder {
	out := make([]models.Folder, 0)
	var walk func(nodes []*models.FolderTreeNode)
	walk = func(nodes []*models.FolderTreeNode) {
		for _, n := range nodes {
			out = append(out, n.Folder)
			walk(n.Children)
		}
	}
	walk(tree)
	return out
}

// FoldersInTreeOrder returns folders in display order: built, sorted, flattened.
func FoldersInTreeOrder(folders []models.Folder) []models.Folder {
	return Flatten(Build(folders))
}

// FindNode searches every level for the node holding folderID.
func FindNode(tree []*models.FolderTreeNode, folderID string) *models.FolderTreeNode {
	for _, node := range tree {
		if node.Folder.ID == folderID {
			return node
		}
		if found := FindNode(node.Children, folderID); found != nil {
			return found
		}
	}
	return nil
}

// IDAndDescendantIDs returns [folderID, ...all descendant ids]. An id not in
// the tree yields just [folderID].
func IDAndDescendantIDs(tree []*models.FolderTreeNode, folderID string) []string {
	ids := []string{folderID}
	node := FindNode(tree, folderID)
	if node == nil {
		return ids
	}
	var collect func(nodes []*models.FolderTreeNode)
	collect = func(nodes []*models.FolderTreeNode) {
		for _, n := range nodes {
			ids = append(ids, n.Folder.ID)
			collect(n.Children)
		}
	}
	collect(node.Children)
	return ids
}

// Height is the number of levels below node (a leaf has height 0).
func Height(node *models.FolderTreeNode) int {
	h := 0
	for _, c := range node.Children {
		if ch := Height(c) + 1; ch > h {
			h = ch
		}
	}
	return h
}

// NameKey is the case-folded form of a folder name used for sibling
// uniqueness comparisons.
func NameKey(name string) string {
	// Casers are stateful; never share one across goroutines
	return cases.Fold().String(strings.TrimSpace(name))
}

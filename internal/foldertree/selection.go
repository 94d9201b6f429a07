package foldertree

import (
	"encoding/json"
	"fmt"
	"sort"

	"noteshelf/internal/domain/models"
)

// UncategorizedKey is the wire form of the Uncategorized selection item.
const UncategorizedKey = "uncategorized"

// SelectionKind tags a SelectionItem.
type SelectionKind int

const (
	KindFolder SelectionKind = iota
	KindUncategorized
)

// SelectionItem is one member of a selection: a folder, or the notes that
// have no folder.
type SelectionItem struct {
	Kind     SelectionKind
	FolderID string // set only for KindFolder
}

// FolderItem selects the notes of a single folder.
func FolderItem(id string) SelectionItem {
	return SelectionItem{Kind: KindFolder, FolderID: id}
}

// Uncategorized selects the notes without a folder.
var Uncategorized = SelectionItem{Kind: KindUncategorized}

// ParseSelectionItem reads the wire form: "uncategorized" (or the legacy
// "null") is Uncategorized, anything else non-empty is a folder id.
func ParseSelectionItem(raw string) (SelectionItem, bool) {
	switch raw {
	case "":
		return SelectionItem{}, false
	case UncategorizedKey, "null":
		return Uncategorized, true
	default:
		return FolderItem(raw), true
	}
}

func (i SelectionItem) String() string {
	if i.Kind == KindUncategorized {
		return UncategorizedKey
	}
	return i.FolderID
}

func (i SelectionItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.String())
}

func (i *SelectionItem) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	item, ok := ParseSelectionItem(raw)
	if !ok {
		return fmt.Errorf("empty selection item")
	}
	*i = item
	return nil
}

// Selection is an immutable set of selection items. The empty selection
// means "all notes, no folder filter".
type Selection struct {
	items map[SelectionItem]struct{}
}

// NewSelection builds a selection from items, ignoring duplicates.
func NewSelection(items ...SelectionItem) Selection {
	s := Selection{items: make(map[SelectionItem]struct{}, len(items))}
	for _, it := range items {
		s.items[it] = struct{}{}
	}
	return s
}

func (s Selection) Has(item SelectionItem) bool {
	_, ok := s.items[item]
	return ok
}

func (s Selection) Len() int {
	return len(s.items)
}

func (s Selection) IsEmpty() bool {
	return len(s.items) == 0
}

// Items returns the members with Uncategorized first, then folder ids sorted.
func (s Selection) Items() []SelectionItem {
	out := make([]SelectionItem, 0, len(s.items))
	for it := range s.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind == KindUncategorized
		}
		return out[i].FolderID < out[j].FolderID
	})
	return out
}

// Equal reports whether both selections hold the same items.
func (s Selection) Equal(other Selection) bool {
	if s.Len() != other.Len() {
		return false
	}
	for it := range s.items {
		if !other.Has(it) {
			return false
		}
	}
	return true
}

func (s Selection) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Items())
}

func (s *Selection) UnmarshalJSON(data []byte) error {
	var items []SelectionItem
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*s = NewSelection(items...)
	return nil
}

func (s Selection) with(add []SelectionItem, remove []SelectionItem) Selection {
	next := NewSelection(s.Items()...)
	for _, it := range remove {
		delete(next.items, it)
	}
	for _, it := range add {
		next.items[it] = struct{}{}
	}
	return next
}

// Toggle returns the selection after clicking target; sel is not modified.
//
//   - nil target clears the selection (show all notes).
//   - Uncategorized flips its own membership.
//   - A folder expands to itself plus every descendant in tree. If any of
//     those is already selected the whole group is removed, otherwise the
//     whole group is added, so a partially selected subtree toggles off.
func Toggle(tree []*models.FolderTreeNode, sel Selection, target *SelectionItem) Selection {
	if target == nil {
		return NewSelection()
	}
	if target.Kind == KindUncategorized {
		if sel.Has(Uncategorized) {
			return sel.with(nil, []SelectionItem{Uncategorized})
		}
		return sel.with([]SelectionItem{Uncategorized}, nil)
	}

	ids := IDAndDescendantIDs(tree, target.FolderID)
	group := make([]SelectionItem, len(ids))
	selected := false
	for i, id := range ids {
		group[i] = FolderItem(id)
		if sel.Has(group[i]) {
			selected = true
		}
	}
	if selected {
		return sel.with(nil, group)
	}
	return sel.with(group, nil)
}

// ResolveQuery turns a selection into the note folder filter:
// Uncategorized becomes "folder_id IS NULL", folder ids pass through, and an
// empty selection yields the unconstrained filter.
func ResolveQuery(sel Selection) models.NoteFolderFilter {
	var filter models.NoteFolderFilter
	for _, it := range sel.Items() {
		if it.Kind == KindUncategorized {
			filter.IncludeUncategorized = true
			continue
		}
		filter.FolderIDs = append(filter.FolderIDs, it.FolderID)
	}
	return filter
}

// Expand adds every descendant of each selected folder, the server-side
// equivalent of having toggled each folder on individually.
func Expand(tree []*models.FolderTreeNode, sel Selection) Selection {
	var add []SelectionItem
	for _, it := range sel.Items() {
		if it.Kind != KindFolder {
			continue
		}
		for _, id := range IDAndDescendantIDs(tree, it.FolderID) {
			add = append(add, FolderItem(id))
		}
	}
	return sel.with(add, nil)
}

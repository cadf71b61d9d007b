package menus

// TreeNode is implemented by RootItem and ChildItem only, so a tree built
// from menu items cannot describe more than one level of nesting.
type TreeNode interface {
	Node() *MenuItem
	Depth() int
	treeNode()
}

// RootItem is a top level entry together with its ordered children.
type RootItem struct {
	Item     *MenuItem
	Children []ChildItem
}

// ChildItem is a nested entry. ParentKey is the stable key of its root.
type ChildItem struct {
	Item      *MenuItem
	ParentKey string
}

func (r RootItem) Node() *MenuItem  { return r.Item }
func (r RootItem) Depth() int       { return 0 }
func (RootItem) treeNode()          {}
func (c ChildItem) Node() *MenuItem { return c.Item }
func (c ChildItem) Depth() int      { return 1 }
func (ChildItem) treeNode()         {}

// BuildTree groups an ordered flat list of items into roots with children.
// Input order is preserved at both levels. Children whose parent is not in
// the list are dropped.
func BuildTree(items []*MenuItem) []RootItem {
	roots := make([]RootItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		if item == nil || !item.IsRoot() {
			continue
		}
		index[item.ID.String()] = len(roots)
		roots = append(roots, RootItem{Item: item})
	}
	for _, item := range items {
		if item == nil || item.IsRoot() {
			continue
		}
		pos, ok := index[item.ParentID.String()]
		if !ok {
			continue
		}
		roots[pos].Children = append(roots[pos].Children, ChildItem{
			Item:      item,
			ParentKey: roots[pos].Item.Key(),
		})
	}
	return roots
}

// Flatten walks the tree depth first.
func Flatten(roots []RootItem) []TreeNode {
	out := make([]TreeNode, 0, len(roots))
	for _, root := range roots {
		out = append(out, root)
		for _, child := range root.Children {
			out = append(out, child)
		}
	}
	return out
}

package manual

// NavEntry is one link of the manual navigation.
type NavEntry struct {
	Label string
	Link  string
}

// BuildNav returns one entry per item, in item order.
func BuildNav(items []Item) []NavEntry {
	out := make([]NavEntry, len(items))
	for i, item := range items {
		out[i] = NavEntry{Label: string(item.Label), Link: FileName(item)}
	}
	return out
}

package cpn

// Compose merges nets into one. Nodes are shared by id and arcs by key, so
// composing a net with itself yields an equal net.
func Compose(nets ...*Net) *Net {
	ret := empty()
	for _, n := range nets {
		if n != nil {
			ret.merge(n)
		}
	}
	return ret
}

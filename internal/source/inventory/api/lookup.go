package api

// Lookup defines an API lookup action for a data bag item. The error is
// part of the response so that a failed fetch can be cached the same way
// as a successful one.
type Lookup struct {
	Bag   string
	Name  string
	Item  *Item
	Error error
}

// NodeLookup defines an API lookup action for a node.
type NodeLookup struct {
	FQDN  string
	Node  *Node
	Error error
}

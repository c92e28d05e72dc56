package api

// Node is a host registered in the inventory together with its assigned
// roles.
type Node struct {
	Name  string   `json:"name"`
	FQDN  string   `json:"fqdn"`
	Roles []string `json:"roles"`
}

// HasRole reports whether the node holds the named role, matching
// case-sensitively.
func (n *Node) HasRole(role string) bool {
	for _, r := range n.Roles {
		if r == role {
			return true
		}
	}

	return false
}

package merge

import "confmerge/internal/model"

// networkGuard enforces the preserve-network guard: when active, on the
// "network" package the merge must not change the lan interface's
// ipaddr/netmask, must not remove or rename a section whose
// proto/ipaddr/device participates in the management interface, and
// must not remove a dns list entry that is currently the default
// gateway's DNS. A guarded operation is downgraded to a conflict with
// resolution kept-existing rather than applied.
type networkGuard struct {
	active bool
}

func newNetworkGuard(pkgName string, preserveNetwork bool) *networkGuard {
	return &networkGuard{
		active: preserveNetwork && pkgName == "network",
	}
}

// guardedInterfaceOptions are the lan interface options the guard
// refuses to let an incoming value change.
var guardedInterfaceOptions = map[string]bool{
	"ipaddr":  true,
	"netmask": true,
}

// blocksOption reports whether changing option "name" on section
// "label" must be refused.
func (g *networkGuard) blocksOption(label, name string) bool {
	if g == nil || !g.active {
		return false
	}
	if label != "lan" {
		return false
	}
	return guardedInterfaceOptions[name]
}

// blocksListRemoval reports whether merging incoming into currentList for
// the dns list on the lan section would drop the current default
// gateway's DNS entry, by convention the first entry of the current
// list, and must therefore be refused.
func (g *networkGuard) blocksListRemoval(label, name string, currentList, incoming []model.Value) bool {
	if g == nil || !g.active {
		return false
	}
	if name != "dns" || label != "lan" {
		return false
	}
	if len(currentList) == 0 {
		return false
	}
	gateway := currentList[0]
	for _, v := range incoming {
		if v == gateway {
			return false
		}
	}
	return true
}

package host

import (
	"errors"
	"fmt"
	"net/netip"
)

// AddressKind identifies which addresses of a host an AddressMode selects.
type AddressKind int

const (
	Normal AddressKind = iota
	Alias
	Explicit
	AllIPv4
	AllIPv6
	AdditionalIPv4
	AdditionalIPv6
	IndexedIPv4
	IndexedIPv6
)

var kindNames = map[AddressKind]string{
	Normal:         "address",
	Alias:          "alias",
	Explicit:       "explicit",
	AllIPv4:        "all_ipv4addresses",
	AllIPv6:        "all_ipv6addresses",
	AdditionalIPv4: "additional_ipv4addresses",
	AdditionalIPv6: "additional_ipv6addresses",
	IndexedIPv4:    "indexed_ipv4address",
	IndexedIPv6:    "indexed_ipv6address",
}

// String returns the configuration name of the kind.
func (k AddressKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("AddressKind(%d)", int(k))
}

// ParseAddressKind maps a configuration name to its AddressKind.
func ParseAddressKind(name string) (AddressKind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown address mode %q", name)
}

// Family is the IP family a mode selects from.
type Family int

const (
	FamilyAny Family = iota
	FamilyIPv4
	FamilyIPv6
)

func (f Family) String() string {
	switch f {
	case FamilyIPv4:
		return "ipv4"
	case FamilyIPv6:
		return "ipv6"
	default:
		return "any"
	}
}

// AddressMode selects the probe targets of a host. Only one variant is
// active; Host is set for Explicit, Index for the indexed variants.
type AddressMode struct {
	Kind  AddressKind
	Host  string
	Index int
}

// ModeNormal returns the mode that pings the primary address.
func ModeNormal() AddressMode { return AddressMode{Kind: Normal} }

// ModeAlias returns the mode that pings the host alias.
func ModeAlias() AddressMode { return AddressMode{Kind: Alias} }

// ModeExplicit returns the mode that pings a fixed host name or address.
func ModeExplicit(h string) AddressMode { return AddressMode{Kind: Explicit, Host: h} }

// ModeIndexed returns the mode that pings the i-th (1-based) address of
// the given family.
func ModeIndexed(f Family, i int) AddressMode {
	if f == FamilyIPv6 {
		return AddressMode{Kind: IndexedIPv6, Index: i}
	}
	return AddressMode{Kind: IndexedIPv4, Index: i}
}

// Family returns the IP family the mode selects from.
func (m AddressMode) Family() Family {
	switch m.Kind {
	case AllIPv4, AdditionalIPv4, IndexedIPv4:
		return FamilyIPv4
	case AllIPv6, AdditionalIPv6, IndexedIPv6:
		return FamilyIPv6
	default:
		return FamilyAny
	}
}

func (m AddressMode) String() string {
	switch m.Kind {
	case Explicit:
		return fmt.Sprintf("%s(%s)", m.Kind, m.Host)
	case IndexedIPv4, IndexedIPv6:
		return fmt.Sprintf("%s(%d)", m.Kind, m.Index)
	default:
		return m.Kind.String()
	}
}

// ErrIndexOutOfRange is matched by ResolutionError via errors.Is.
var ErrIndexOutOfRange = errors.New("index out of range")

// ResolutionError reports an indexed mode pointing past the end of the
// host's address list.
type ResolutionError struct {
	Host      string
	Mode      AddressMode
	Available int
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("host %s: %s: index out of range (%d %s address(es) available)",
		e.Host, e.Mode, e.Available, e.Mode.Family())
}

// Is reports whether target is ErrIndexOutOfRange.
func (e *ResolutionError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}

// Resolve expands mode into the ordered probe targets of inv.
// It never modifies inv. An empty result is valid for the additional-only
// modes when the host has no additional addresses of that family.
func Resolve(inv Inventory, mode AddressMode) ([]string, error) {
	switch mode.Kind {
	case Normal:
		return []string{orName(inv.Address, inv.Name)}, nil
	case Alias:
		return []string{orName(inv.Alias, inv.Name)}, nil
	case Explicit:
		return []string{mode.Host}, nil
	case AllIPv4, AllIPv6:
		return familyAddresses(inv, mode.Family(), true), nil
	case AdditionalIPv4, AdditionalIPv6:
		return familyAddresses(inv, mode.Family(), false), nil
	case IndexedIPv4, IndexedIPv6:
		addrs := familyAddresses(inv, mode.Family(), true)
		if mode.Index < 1 || mode.Index > len(addrs) {
			return nil, &ResolutionError{Host: inv.Name, Mode: mode, Available: len(addrs)}
		}
		return []string{addrs[mode.Index-1]}, nil
	}
	return nil, fmt.Errorf("host %s: unsupported address mode %s", inv.Name, mode)
}

// familyAddresses returns [primary-if-matching, additional...] for f.
func familyAddresses(inv Inventory, f Family, withPrimary bool) []string {
	extra := inv.IPv4
	if f == FamilyIPv6 {
		extra = inv.IPv6
	}

	out := make([]string, 0, len(extra)+1)
	if withPrimary && inFamily(inv.Address, f) {
		out = append(out, inv.Address)
	}
	return append(out, extra...)
}

// inFamily reports whether addr is an IP literal of family f.
func inFamily(addr string, f Family) bool {
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return false
	}
	ip = ip.Unmap()
	switch f {
	case FamilyIPv4:
		return ip.Is4()
	case FamilyIPv6:
		return ip.Is6()
	}
	return true
}

func orName(v, name string) string {
	if v == "" {
		return name
	}
	return v
}

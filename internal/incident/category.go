package incident

// CategoryRule pairs a pattern-category label with the keywords that
// select it. Rules are matched in slice order and the first match wins;
// the ordering is part of the contract, not an implementation detail.
type CategoryRule struct {
	Category string   `json:"category" yaml:"category"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// CategoryOther labels incidents no rule matched.
const CategoryOther = "Other"

// DefaultCategoryRules returns the network incident categorization rules.
func DefaultCategoryRules() []CategoryRule {
	return []CategoryRule{
		{Category: "WiFi/Wireless", Keywords: []string{"wifi", "wireless", "access point", "wap", "ssid"}},
		{Category: "VPN/Remote Access", Keywords: []string{"vpn", "remote", "zscaler", "remote access", "remote desktop"}},
		{Category: "Network Printing", Keywords: []string{"printer", "print", "printing", "print queue"}},
		{Category: "Server/Performance", Keywords: []string{"server", "performance", "slow", "clearcase", "application"}},
		{Category: "DNS/Resolution", Keywords: []string{"dns", "resolution", "name resolution", "nslookup"}},
		{Category: "Firewall/Security", Keywords: []string{"firewall", "blocked", "security", "access denied"}},
		{Category: "Connectivity", Keywords: []string{"connectivity", "connection", "network", "ping", "unreachable"}},
		{Category: "Hardware", Keywords: []string{"hardware", "device", "router", "switch", "equipment failure"}},
	}
}

package tax

import "strings"

// ExemptionPolicy decides whether a service type is exempt from tax. The
// calculation pipeline takes this as an injected strategy so jurisdictions or
// tenants can supply their own rule set.
type ExemptionPolicy func(serviceType string) bool

// Service types exempt under the default policy.
var defaultExemptServices = map[string]struct{}{
	"travel":   {},
	"mileage":  {},
	"expenses": {},
}

// DefaultExemptionPolicy treats travel, mileage and expense lines as exempt.
func DefaultExemptionPolicy(serviceType string) bool {
	_, ok := defaultExemptServices[strings.ToLower(strings.TrimSpace(serviceType))]
	return ok
}

// NoExemptions is a policy under which every service type is taxable.
func NoExemptions(string) bool { return false }

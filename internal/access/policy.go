// Package access classifies authenticated principals against the two
// configured allow-lists. Classification is pure; what a denial or a
// wrong-panel visit does (redirect, sign-out, 403) is the caller's decision.
package access

// Decision is the outcome of classifying a principal's email.
type Decision int

const (
	// Denied means the email is on neither allow-list.
	Denied Decision = iota
	// ClientAccess grants the restricted client panel.
	ClientAccess
	// DeveloperAccess grants the full developer panel.
	DeveloperAccess
)

// String implements fmt.Stringer for log fields.
func (d Decision) String() string {
	switch d {
	case ClientAccess:
		return "client"
	case DeveloperAccess:
		return "developer"
	default:
		return "denied"
	}
}

// Policy holds the configured allow-lists.
type Policy struct {
	clients    map[string]struct{}
	developers map[string]struct{}
}

// NewPolicy builds a policy from the two email lists.
func NewPolicy(clients, developers []string) *Policy {
	p := &Policy{
		clients:    make(map[string]struct{}, len(clients)),
		developers: make(map[string]struct{}, len(developers)),
	}
	for _, email := range clients {
		if email != "" {
			p.clients[email] = struct{}{}
		}
	}
	for _, email := range developers {
		if email != "" {
			p.developers[email] = struct{}{}
		}
	}
	return p
}

// Classify matches email exactly, case-sensitively, client list first.
func (p *Policy) Classify(email string) Decision {
	if _, ok := p.clients[email]; ok {
		return ClientAccess
	}
	if _, ok := p.developers[email]; ok {
		return DeveloperAccess
	}
	return Denied
}

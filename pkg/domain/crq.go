package domain

import (
	"strings"
)

// CRQ is a work-stream of the change window.
type CRQ struct {
	// Name of the CRQ, like "REDE".
	Name string

	// Planned number of activities. Informational only.
	Total int

	Emoji string
}

// Catalogue is the ordered list of CRQs.
//
// The order is the display order, and it also decides which CRQ a sheet is mapped to.
type Catalogue []CRQ

// DefaultCatalogue returns the CRQs of the change window.
func DefaultCatalogue() Catalogue {
	return Catalogue{
		{Name: "REDE", Total: 72, Emoji: "🟢"},
		{Name: "OPENSHIFT", Total: 39, Emoji: "🔵"},
		{Name: "NFS", Total: 17, Emoji: "🟠"},
		{Name: "SI", Total: 25, Emoji: "🟡"},
	}
}

func (c Catalogue) Names() []string {
	names := make([]string, 0, len(c))
	for _, crq := range c {
		names = append(names, crq.Name)
	}
	return names
}

// Lookup finds a CRQ by name, case-insensitively.
func (c Catalogue) Lookup(name string) (CRQ, bool) {
	name = strings.TrimSpace(name)
	for _, crq := range c {
		if strings.EqualFold(crq.Name, name) {
			return crq, true
		}
	}
	return CRQ{}, false
}

// Index returns the display position of the CRQ.
//
// Unknown names are placed after every known CRQ.
func (c Catalogue) Index(name string) int {
	for nth, crq := range c {
		if strings.EqualFold(crq.Name, name) {
			return nth
		}
	}
	return len(c)
}

// Total is the sum of planned activity counts.
func (c Catalogue) Total() int {
	total := 0
	for _, crq := range c {
		total += crq.Total
	}
	return total
}

// Emoji of the named CRQ, or "" when unknown.
func (c Catalogue) Emoji(name string) string {
	if crq, ok := c.Lookup(name); ok {
		return crq.Emoji
	}
	return ""
}

// ForSheet maps a spreadsheet sheet name to the CRQ.
//
// A sheet belongs to the first CRQ whose name is contained in the upper-cased sheet name.
func (c Catalogue) ForSheet(sheetName string) (CRQ, bool) {
	upper := strings.ToUpper(sheetName)
	for _, crq := range c {
		if strings.Contains(upper, strings.ToUpper(crq.Name)) {
			return crq, true
		}
	}
	return CRQ{}, false
}

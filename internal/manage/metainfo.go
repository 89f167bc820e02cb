package manage

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/conn-castle/yaam/internal/addon"
	"github.com/conn-castle/yaam/internal/peinfo"
)

// matchesInfo reports whether a binary's embedded info identifies the addon: the addon name appears
// in the product, description or company; the company names the addon or one of its contributors;
// or a contributor appears in the description. Empty fields never match.
func matchesInfo(base addon.Base, info peinfo.Info) bool {
	name := fold(base.Name)
	if name == "" {
		return false
	}
	company := fold(info.Get(peinfo.CompanyName))
	desc := fold(info.Get(peinfo.FileDescription))
	product := fold(info.Get(peinfo.ProductName))

	if contains(product, name) || contains(desc, name) || contains(company, name) || contains(name, company) {
		return true
	}
	for _, c := range base.Contributors {
		c = fold(c)
		if c == "" {
			continue
		}
		if c == company || contains(desc, c) {
			return true
		}
	}
	return false
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func contains(s string, sub string) bool {
	return s != "" && sub != "" && strings.Contains(s, sub)
}

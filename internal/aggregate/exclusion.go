package aggregate

import (
	"fmt"
	"regexp"
	"strings"

	"zest/internal/config"
)

// Line patterns that never count toward contract coverage.
var commonExclusions = []string{
	`^\s*#\[(program|account)\]$`,
	`^\s*#\[(tokio::)?test\]$`,
	`^\s*#\[derive\(\s*[^\)]+\s*\)\]$`,
	`^\s*declare_id!\(\s*.*\s*\);$`,
}

var anchorExclusions = []string{
	`^\s*declare_program!\(\s*.*\s*\);$`,
}

var exclusionRegexps = map[config.ContractStyle]*regexp.Regexp{
	config.StyleAnchor: regexp.MustCompile(mustPattern(config.StyleAnchor)),
	config.StyleNative: regexp.MustCompile(mustPattern(config.StyleNative)),
}

// ExclusionPattern returns the line-exclusion regex source for style.
func ExclusionPattern(style config.ContractStyle) (string, error) {
	switch style {
	case config.StyleAnchor:
		return join(commonExclusions, anchorExclusions), nil
	case config.StyleNative:
		return join(commonExclusions), nil
	default:
		return "", fmt.Errorf("unknown contract style %q", style)
	}
}

// ExclusionRegexp returns the compiled exclusion regex for style.
func ExclusionRegexp(style config.ContractStyle) (*regexp.Regexp, error) {
	re, ok := exclusionRegexps[style]
	if !ok {
		return nil, fmt.Errorf("unknown contract style %q", style)
	}
	return re, nil
}

func mustPattern(style config.ContractStyle) string {
	p, err := ExclusionPattern(style)
	if err != nil {
		panic(err)
	}
	return p
}

func join(groups ...[]string) string {
	var all []string
	for _, g := range groups {
		all = append(all, g...)
	}
	return strings.Join(all, "|")
}

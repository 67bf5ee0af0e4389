// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClearDesk Contributors

// Package pii detects and masks personally identifiable information in
// document text before it is chunked and indexed.
package pii

import (
	"regexp"

	cderr "github.com/cleardesk-hq/cleardesk/pkg/errors"
)

// Rule defines a single PII detection pattern. The matched region is
// replaced by Placeholder, which by convention is the rule name in
// brackets, e.g. [EMAIL].
type Rule struct {
	Name        string
	Pattern     *regexp.Regexp
	Placeholder string
}

// Masker replaces PII in text using an ordered rule list.
//
// Rule order is a correctness requirement, not a preference: structurally
// specific patterns (letter-prefixed identifiers, punctuated numeric
// formats) must run before broad numeric ones, or an 8-digit account rule
// would swallow the digits of a phone number first. Each rule runs against
// the progressively masked string, so earlier rules claim characters and
// later rules cannot re-match masked regions.
type Masker struct {
	rules []Rule
}

// NewMasker creates a masker with the given ordered rules.
func NewMasker(rules []Rule) (*Masker, error) {
	for i, r := range rules {
		if r.Name == "" {
			return nil, cderr.Errorf(cderr.CodePIIRuleInvalid, "rule %d has empty name", i)
		}
		if r.Pattern == nil {
			return nil, cderr.Errorf(cderr.CodePIIRuleInvalid, "rule %d (%s) has nil pattern", i, r.Name)
		}
		if r.Placeholder == "" {
			return nil, cderr.Errorf(cderr.CodePIIRuleInvalid, "rule %d (%s) has empty placeholder", i, r.Name)
		}
	}
	return &Masker{rules: rules}, nil
}

// NewDefaultMasker creates a masker with DefaultRules.
func NewDefaultMasker() *Masker {
	m, err := NewMasker(DefaultRules())
	if err != nil {
		// DefaultRules is a package constant; a failure here is a bug.
		panic(err)
	}
	return m
}

// Mask replaces all detected PII with rule placeholders. Empty input is
// returned unchanged; text already containing only placeholders is a
// no-op.
func (m *Masker) Mask(text string) string {
	masked, _ := m.MaskWithStats(text)
	return masked
}

// MaskWithStats masks PII and reports how many matches each rule
// replaced, keyed by rule name. Rules with no matches do not appear in
// the map.
func (m *Masker) MaskWithStats(text string) (string, map[string]int) {
	stats := map[string]int{}
	if text == "" {
		return text, stats
	}

	masked := text
	for _, rule := range m.rules {
		n := len(rule.Pattern.FindAllStringIndex(masked, -1))
		if n == 0 {
			continue
		}
		stats[rule.Name] = n
		masked = rule.Pattern.ReplaceAllLiteralString(masked, rule.Placeholder)
	}

	return masked, stats
}

// DetectOnly reports the raw substrings each rule matches, keyed by rule
// name, without masking. The returned values are the sensitive data
// itself; callers must handle them accordingly. Unlike masking, detection
// runs every rule against the original text, so a substring may be
// reported by more than one rule.
func (m *Masker) DetectOnly(text string) map[string][]string {
	detections := map[string][]string{}
	if text == "" {
		return detections
	}

	for _, rule := range m.rules {
		matches := rule.Pattern.FindAllString(text, -1)
		if len(matches) > 0 {
			detections[rule.Name] = matches
		}
	}

	return detections
}

// DefaultRules returns the built-in UK-locale rule set, ordered most
// specific first.
//
// The trailing BANK_ACCOUNT and PASSPORT rules match any bare 8- or
// 9-digit run and will claim unrelated numbers of those lengths; that
// trade-off is deliberate, and the earlier punctuated rules exist to take
// their formats out of reach first.
func DefaultRules() []Rule {
	return []Rule{
		{
			// National Insurance number: 2 letters, 6 digits, 1 letter.
			// Prefix letters D, F, I, Q, U, V (and O in second position)
			// are never issued.
			Name:        "NI_NUMBER",
			Pattern:     regexp.MustCompile(`(?i)\b[A-CEGHJ-PR-TW-Z][A-CEGHJ-NPR-TW-Z]\d{6}[A-D]\b`),
			Placeholder: "[NI_NUMBER]",
		},
		{
			// DD/MM/YYYY, DD-MM-YYYY, DD.MM.YYYY. Must precede SORT_CODE.
			Name:        "DOB",
			Pattern:     regexp.MustCompile(`\b(?:0[1-9]|[12]\d|3[01])[-/.](?:0[1-9]|1[0-2])[-/.](?:19|20)\d{2}\b`),
			Placeholder: "[DOB]",
		},
		{
			// Mobile (07xxx...) and landline (01xxx/02xxx) forms with
			// optional +44 prefix. Must precede SORT_CODE and the bare
			// digit rules.
			Name:        "PHONE_UK",
			Pattern:     regexp.MustCompile(`(?:\+44\s?)?(?:0|\(0\))?\s?7\d{3}[\s.-]?\d{3}[\s.-]?\d{3}|(?:\+44\s?)?(?:0|\(0\))?\s?[1-2]\d{2,3}[\s.-]?\d{3}[\s.-]?\d{3,4}`),
			Placeholder: "[PHONE]",
		},
		{
			Name:        "EMAIL",
			Pattern:     regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
			Placeholder: "[EMAIL]",
		},
		{
			// UK postcode, e.g. SW1A 1AA, M1 1AE, B33 8TH.
			Name:        "POSTCODE",
			Pattern:     regexp.MustCompile(`(?i)\b[A-Z]{1,2}\d[A-Z\d]?\s*\d[A-Z]{2}\b`),
			Placeholder: "[POSTCODE]",
		},
		{
			// Sort code with hyphens only; hyphens keep it specific.
			Name:        "SORT_CODE",
			Pattern:     regexp.MustCompile(`\b\d{2}-\d{2}-\d{2}\b`),
			Placeholder: "[SORT_CODE]",
		},
		{
			Name:        "BANK_ACCOUNT",
			Pattern:     regexp.MustCompile(`\b\d{8}\b`),
			Placeholder: "[BANK_ACCOUNT]",
		},
		{
			Name:        "PASSPORT",
			Pattern:     regexp.MustCompile(`\b\d{9}\b`),
			Placeholder: "[PASSPORT]",
		},
	}
}

package domain

import (
	"encoding/json"
	"net/url"
	"strings"
)

// Office classifies an official by the seat they hold. The zero value is
// Senator so that precedence ordering matches iota order directly.
type Office int

const (
	OfficeSenator Office = iota
	OfficeRepresentative
	OfficeMayor
	OfficeOther
)

// String returns the user-facing office label.
func (o Office) String() string {
	switch o {
	case OfficeSenator:
		return "US Senator"
	case OfficeRepresentative:
		return "US Representative"
	case OfficeMayor:
		return "Mayor"
	default:
		return "Other"
	}
}

// Precedence returns the sort rank for result ordering: senators first,
// then representatives, then local executives, everything else last.
func (o Office) Precedence() int {
	switch o {
	case OfficeSenator:
		return 0
	case OfficeRepresentative:
		return 1
	case OfficeMayor:
		return 2
	default:
		return 9
	}
}

// MaxContactValues caps each contact list (phones, emails, urls) to bound
// payload size against noisy upstream records.
const MaxContactValues = 4

// Official is the canonical shape every upstream record normalizes to.
// Name is required; everything else is best effort.
type Official struct {
	Name        string            `json:"name"`
	Office      Office            `json:"-"`
	OfficeLabel string            `json:"-"` // free text for OfficeOther
	Party       string            `json:"party,omitempty"`
	State       string            `json:"state,omitempty"`
	District    string            `json:"district,omitempty"`
	Phones      []string          `json:"phones"`
	Emails      []string          `json:"emails"`
	URLs        []string          `json:"urls"`
	PhotoURL    string            `json:"photo_url,omitempty"`
	SourceIDs   map[string]string `json:"-"` // provider name -> opaque id, debugging only
}

// MarshalJSON renders the office as its label so clients never see the
// internal enum value, and always emits contact lists as arrays.
func (o Official) MarshalJSON() ([]byte, error) {
	type alias Official
	a := alias(o)
	if a.Phones == nil {
		a.Phones = []string{}
	}
	if a.Emails == nil {
		a.Emails = []string{}
	}
	if a.URLs == nil {
		a.URLs = []string{}
	}
	return json.Marshal(struct {
		alias
		Office string `json:"office"`
	}{a, o.OfficeName()})
}

// OfficeName returns the display label, preferring the free-text label for
// OfficeOther records.
func (o Official) OfficeName() string {
	if o.Office == OfficeOther && o.OfficeLabel != "" {
		return o.OfficeLabel
	}
	return o.Office.String()
}

// AddPhone appends a phone number unless empty, already present, or the
// list is full.
func (o *Official) AddPhone(v string) { o.Phones = appendContact(o.Phones, v) }

// AddEmail appends an email address unless empty, already present, or the
// list is full.
func (o *Official) AddEmail(v string) { o.Emails = appendContact(o.Emails, v) }

// AddURL appends a website URL unless empty, already present, or the list
// is full.
func (o *Official) AddURL(v string) { o.URLs = appendContact(o.URLs, v) }

// EnsureURL guarantees a non-empty URL list for any named official by
// appending a synthesized web-search fallback when no authoritative
// website was found upstream.
func (o *Official) EnsureURL() {
	if len(o.URLs) > 0 || o.Name == "" {
		return
	}
	o.AddURL(SearchFallbackURL(o.Name, o.State, o.OfficeName()))
}

// SearchFallbackURL builds a web-search query URL of the form
// "{name} {state} {office} official site". Used when an upstream record
// carries no website of its own.
func SearchFallbackURL(name, state, office string) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{name, state, office} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	parts = append(parts, "official site")
	q := url.QueryEscape(strings.Join(parts, " "))
	return "https://duckduckgo.com/?q=" + q
}

func appendContact(list []string, v string) []string {
	if v == "" || len(list) >= MaxContactValues {
		return list
	}
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

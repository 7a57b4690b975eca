// Package domain models U.S. civic lookup data: resolved locations,
// elected officials, and the provider contracts the service composes.
//
// # Location Resolution
//
// A lookup input is either a bare 5-digit ZIP code or a free-text street
// address. ZIPs resolve through a keyless ZIP-to-geo provider to
// coordinates, which are then reverse geocoded against the Census Bureau
// geocoder; addresses go straight to the forward geocoder. Either path
// produces a [LocationFix] carrying the two-letter state abbreviation and
// the congressional district number.
//
// # Congressional Districts
//
// District numbering follows Census conventions: at-large states (single
// statewide district) are district 0. The Census geography payload keys its
// layers by vintage-specific human names ("119th Congressional Districts"),
// so extraction scans for any key containing "congressional district"
// rather than hard-coding a session number. A geography bundle with no
// congressional-district layer at all also yields district 0; the two cases
// are deliberately not distinguished.
//
// # Officials
//
// Every upstream record (Congress roster terms, role-aggregator people
// records, knowledge-graph bindings for local executives) normalizes to
// the one [Official] shape. Contact lists are deduplicated at insertion and
// capped at [MaxContactValues] entries. An official with a known name never
// has an empty URL list: when no authoritative website is found, a
// synthesized web-search URL is appended as a fallback.
//
// # Currently Serving
//
// A legislator counts as currently serving when the end date of their most
// recent term is today or later. Terms whose end date fails to parse are
// treated as still serving rather than dropped; the roster is hand-curated
// and a malformed date is more likely a formatting slip than an expired
// seat.
package domain

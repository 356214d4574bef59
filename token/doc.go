// Package token supplies bearer credentials for the authenticated tier of
// the CyLink API. A [Source] abstracts where the token comes from: a fixed
// string ([Static]) or a refresh loop that parses the JWT expiry and renews
// ahead of it ([Refreshing]).
//
// The package never verifies signatures; the backend owns the signing key
// and rejects bad tokens on its side. Claims are parsed unverified only to
// read the expiry.
package token

// Package content talks to the external content service: profile
// lookups, recent item listings, like actions, and connection rosters.
package content

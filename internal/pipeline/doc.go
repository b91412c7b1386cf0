// Package pipeline drives targets through fetch, eligibility checks,
// and the like action, persisting one terminal status per target.
package pipeline

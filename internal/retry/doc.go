// Package retry classifies content service failures and schedules
// backoff between attempts.
package retry

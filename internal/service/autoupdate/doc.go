// Package autoupdate runs the check-and-update pass that keeps a profile's
// stage and interests in line with the calendar.
//
// A pass computes the stage progression, migrates interests when the stage
// changed, stamps the update time and saves, strictly in that order and
// under a per-profile lock. Store failures come back in the result rather
// than as partial changes. A pass that finds nothing to do writes nothing,
// so running it repeatedly is safe.
package autoupdate

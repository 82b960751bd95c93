// Package reminder schedules the reminder campaign anchored to a prenatal
// profile's target date.
//
// A campaign is one reminder per offset kind (a week before, three days
// before, the day before, the due date and the day after). Each point is
// armed through a notify.Registrar and recorded in the history store only
// after the registrar confirms it, so a failed registration stays eligible
// for the next pass. Calls for the same profile and target date are
// coalesced with singleflight and serialized with a per-profile lock, which
// keeps rapid repeated invocations from arming a point twice.
package reminder

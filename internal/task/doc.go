// Package task runs the periodic lifecycle check in the background. Each
// pass brings the stored profile up to date and reconciles its reminder
// campaign, standing in for the app-foreground events that trigger the same
// work on a device.
package task

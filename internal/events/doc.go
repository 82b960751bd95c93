// Package events lets the orchestrator announce profile changes without
// knowing who reacts to them. The reminder scheduler is the main subscriber.
package events

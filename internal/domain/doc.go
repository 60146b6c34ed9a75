// Package domain holds sentinel errors and validation types shared by the
// entity packages (project, stage, activity, budget). Entities live in their
// own subpackages; this package carries only what all of them need.
package domain

// Package clipscan holds module-level metadata.
package clipscan

// Version is the current clipscan release version.
const Version = "0.3.0"

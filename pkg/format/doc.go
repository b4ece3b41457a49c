// Package format turns raw property values into display strings for row
// labels and parent headers. The formatter variant of a property is chosen
// once by Resolve; formatting itself is a pure function of the value and the
// explicit Settings.
package format

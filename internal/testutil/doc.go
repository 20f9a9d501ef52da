// Package testutil holds deterministic stand-ins shared by the package tests:
// a source whose state changes only when the test publishes, a recording
// dispatcher, a notification recorder and an executor that runs posted work
// only when asked.
package testutil

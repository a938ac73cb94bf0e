// Package mocks provides hand-written test doubles for the store and
// service interfaces. Each mock exposes function fields so tests can
// override exactly the calls they care about, with in-memory defaults for
// the rest.
package mocks

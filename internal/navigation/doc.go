// Package navigation adapts optional state to presented screens.
//
// A presented screen (sheet, pushed destination, link) is driven by an
// optional context in state: present when non-nil, absent otherwise. The
// adapters here expose that context as a binding the UI writes nil into when
// the platform dismisses the screen, and route the dismissal to the store as
// an action. Content is produced from the context by a Producer, only while
// the context is present.
package navigation

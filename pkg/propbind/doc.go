// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package propbind provides typed properties with independently configurable
// get and set visibility, and a name-keyed Registry that lets unrelated code
// reach those properties either with full static typing or through a
// type-erased path.
//
// Direct access through Property.Get and Property.Set is never checked: it is
// available to whatever code the owning entity hands the property (or one of
// the narrow Readable/Writable views) to. Mediated access through a Handle or
// a Registry always checks the visibility fixed at construction, and the
// typed and generic registry paths share one gate so neither can be used to
// bypass the other.
//
// A Registry holds non-owning handles. Removing or dropping a property while
// its handle is still registered is the caller's responsibility.
package propbind

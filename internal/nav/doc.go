// Package nav models sidebars as ordered trees of categories and document
// references, and builds them from tag groups or declarative item lists.
//
// Node is a closed union: only DocRef and Category implement it, and every
// consumer switches over both. Children are kept in slices so that the
// order a tree was built in is the order it is serialized in.
package nav

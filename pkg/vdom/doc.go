// Package vdom provides the virtual tree model and the diff engine.
//
// A virtual tree is an in-memory, host-independent description of a UI. It is
// built from VNode values and diffed against a previously rendered tree to
// produce the minimal ordered list of Patch operations needed to bring a live
// display tree up to date.
//
// # Core Types
//
// VNode is the building block and comes in three kinds: tags, text and
// comments. Attribute values are tagged Value instances that are either
// literals (string, number, boolean) or handler references. Handler values are
// never written to the live tree; they are registered with the event system
// after mounting.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Ul(Class("list"),
//	    Li(KeyOf("1"), Text("a")),
//	    Li(KeyOf("2"), Text("b"), OnClick(handler)),
//	)
//
// # Diffing
//
// Diff compares two trees and returns patches addressed by Route, the child
// index path from the root. Routes refer to the previous tree's shape except
// for AddNode, whose route names the parent followed by the insertion index.
// Patches must be applied strictly in the order returned.
package vdom

// Package rules contains the built-in reason rules. Importing the package
// registers every rule with the reason registry.
//
// Priorities are spaced by ten so deployments can slot extra rules between
// the built-in ones.
package rules

// Package types defines the Pet entity, the locator vocabulary used to
// address it, the Gateway interface, change events, and the standard errors
// for the pets storage system.
package types

// Package constant provides shared constant values used across the SDK.
//
// Keep this package free of runtime behavior. It is used by the transport,
// the error classifier, and the ledger client to avoid duplicated literals.
package constant

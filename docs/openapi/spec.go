// Package openapi embeds the feedlot ledger HTTP API description for
// runtime distribution.
package openapi

import _ "embed"

// LedgerSpec contains the OpenAPI document for the ledger HTTP API.
//
//go:embed openapi.yaml
var LedgerSpec []byte

// Spec returns a defensive copy of the embedded OpenAPI YAML.
func Spec() []byte {
	return append([]byte(nil), LedgerSpec...)
}

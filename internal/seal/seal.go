// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugkit Contributors

// Package seal provides the token that gates manager-only plugin setters.
//
// The token type lives in an internal package so code outside this module
// cannot mint one. The manager passes it to plugin.NewInstallContext, which
// is the only path to a valid install context.
package seal

// Token authorizes privileged plugin installation. Only code inside this
// module can construct one.
type Token struct {
	_ byte
}

// New returns a token. Callable only from inside this module.
func New() Token {
	return Token{}
}

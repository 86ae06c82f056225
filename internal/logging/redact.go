package logging

import (
	"slices"
	"strings"
)

// Redacted replaces the value of any pair whose key is a known credential.
const Redacted = "[REDACTED]"

var credentialKeys = map[string]struct{}{
	"client_secret": {},
	"api_key":       {},
	"llm_api_key":   {},
	"access_token":  {},
	"passphrase":    {},
}

// redact returns args with credential values masked. The input slice is
// never modified; it is returned as is when nothing matches.
func redact(args []any) []any {
	var out []any
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		if _, hit := credentialKeys[strings.ToLower(key)]; !hit {
			continue
		}
		if out == nil {
			out = slices.Clone(args)
		}
		out[i+1] = Redacted
	}
	if out == nil {
		return args
	}
	return out
}

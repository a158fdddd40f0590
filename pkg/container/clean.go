package container

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/braude/garage/pkg/types"
)

// Clean encodes v as a JSON object and drops every member whose value is the
// empty string. A cleared field and an absent field are indistinguishable
// afterwards. Numbers are kept as json.Number so decimals pass through
// unchanged.
func Clean(v any) (types.Payload, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode entity: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var p types.Payload
	if err := dec.Decode(&p); err != nil || p == nil {
		return nil, fmt.Errorf("entity is not a JSON object: %w", types.ErrInvalidData)
	}

	for k, val := range p {
		if s, ok := val.(string); ok && s == "" {
			delete(p, k)
		}
	}
	return p, nil
}

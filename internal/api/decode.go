package api

import (
	"encoding/json"
	"fmt"

	pkgerrors "github.com/velora-shop/storefront/pkg/errors"
)

// decodeList accepts the two list shapes the backend serves: a bare JSON
// array, or an object wrapping the array under a named field.
func decodeList[T any](body []byte, field string) ([]T, error) {
	var direct []T
	if err := json.Unmarshal(body, &direct); err == nil {
		return direct, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDecode, err, fmt.Sprintf("decode %s list", field))
	}
	raw, ok := wrapped[field]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeDecode, fmt.Sprintf("response missing %q field", field))
	}
	var list []T
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDecode, err, fmt.Sprintf("decode wrapped %s list", field))
	}
	return list, nil
}

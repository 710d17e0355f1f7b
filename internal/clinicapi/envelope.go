package clinicapi

import (
	"bytes"
	"encoding/json"
)

// The backend answers list endpoints in one of two shapes: a bare JSON array,
// or a DRF-style paginated envelope {"count": N, "results": [...]}. Shape is
// decided once here, at the boundary, instead of being re-checked at every
// call site.

// Only results matters here; the envelope's count is pagination metadata the
// portal never surfaces.
type envelope struct {
	Results json.RawMessage `json:"results"`
}

// decodeList decodes either shape into a slice of T. A nil error with an
// empty slice is a valid outcome; any shape surprise comes back as an *Error.
func decodeList[T any](endpoint string, body []byte) ([]T, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, &Error{Kind: ErrShape, Endpoint: endpoint, Err: errEmptyBody}
	}

	switch trimmed[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, &Error{Kind: ErrDecode, Endpoint: endpoint, Err: err}
		}
		return items, nil

	case '{':
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, &Error{Kind: ErrDecode, Endpoint: endpoint, Err: err}
		}
		if env.Results == nil {
			return nil, &Error{Kind: ErrShape, Endpoint: endpoint, Err: errNoResults}
		}
		var items []T
		if err := json.Unmarshal(env.Results, &items); err != nil {
			return nil, &Error{Kind: ErrShape, Endpoint: endpoint, Err: err}
		}
		return items, nil

	default:
		return nil, &Error{Kind: ErrShape, Endpoint: endpoint, Err: errNotACollection}
	}
}

var (
	errEmptyBody      = jsonShapeError("empty response body")
	errNoResults      = jsonShapeError(`envelope missing "results"`)
	errNotACollection = jsonShapeError("response is neither an array nor an envelope")
)

type jsonShapeError string

func (e jsonShapeError) Error() string { return string(e) }

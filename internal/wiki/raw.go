package wiki

import "encoding/json"

// rawCapture decodes into target and keeps the payload for error reporting.
type rawCapture struct {
	target  any
	payload string
}

func (r *rawCapture) UnmarshalJSON(data []byte) error {
	r.payload = string(data)
	return json.Unmarshal(data, r.target)
}

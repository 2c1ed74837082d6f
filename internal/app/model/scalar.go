package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

var errNotScalar = errors.New("value must be a string or a number")

// Scalar is a client-supplied identifier or code that may arrive as a JSON
// string or a JSON number. It is echoed back in the form it was received and
// compared by its text, so 7 and "7" are the same value.
type Scalar struct {
	text    string
	numeric bool
}

func StringScalar(s string) Scalar {
	return Scalar{text: s}
}

func IntScalar(n int64) Scalar {
	return Scalar{text: strconv.FormatInt(n, 10), numeric: true}
}

func (s Scalar) String() string {
	return s.text
}

func (s Scalar) IsNumeric() bool {
	return s.numeric
}

func (s Scalar) Equal(other Scalar) bool {
	return s.text == other.text
}

// Int64 returns the value as an integer when its text is a base-10 integer.
func (s Scalar) Int64() (int64, bool) {
	n, err := strconv.ParseInt(s.text, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Value is the representation written to the datastore.
func (s Scalar) Value() interface{} {
	if s.numeric {
		return json.Number(s.text)
	}
	return s.text
}

func (s Scalar) MarshalJSON() ([]byte, error) {
	if s.numeric {
		return []byte(s.text), nil
	}
	return json.Marshal(s.text)
}

func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errNotScalar
	}

	if data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*s = Scalar{text: text}
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return err
	}
	n, ok := v.(json.Number)
	if !ok {
		return errNotScalar
	}
	*s = Scalar{text: normalizeNumber(n), numeric: true}
	return nil
}

func normalizeNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if f, err := n.Float64(); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return n.String()
}

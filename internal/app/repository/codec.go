package repository

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ikkim/bizreview-backend/internal/datastore"
)

// Kinds the API stores its entities under
const (
	BusinessKind = "businesses"
	ReviewKind   = "reviews"
)

// toProperties flattens an entity into store attributes using its JSON form,
// so attribute names match the API's field names.
func toProperties(v interface{}) (datastore.Properties, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode entity: %w", err)
	}
	props := datastore.Properties{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&props); err != nil {
		return nil, fmt.Errorf("encode entity: %w", err)
	}
	return props, nil
}

func fromProperties(props datastore.Properties, dst interface{}) error {
	data, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("decode entity: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode entity: %w", err)
	}
	return nil
}

package model

// BusinessRequiredAttributes must all be present to create or replace a business
var BusinessRequiredAttributes = []string{"owner_id", "name", "street_address", "city", "state", "zip_code"}

// Business is a listed business. Its identifier is assigned by the store and
// kept outside the struct; see BusinessView.
type Business struct {
	OwnerID       Scalar `json:"owner_id"`
	Name          string `json:"name"`
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	State         string `json:"state"`
	ZipCode       Scalar `json:"zip_code"`
}

// DecodeBusiness validates a create/replace body and builds the business from it.
func DecodeBusiness(p Payload) (*Business, error) {
	if !Validate(p, BusinessRequiredAttributes) {
		return nil, ErrMissingAttributes
	}
	var b Business
	if err := BuildRecord(p, BusinessRequiredAttributes).Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

// BusinessView is the outgoing representation: the stored attributes plus id.
type BusinessView struct {
	ID int64 `json:"id"`
	Business
}

func AttachBusinessID(id int64, b Business) BusinessView {
	return BusinessView{ID: id, Business: b}
}

package model

var (
	// ReviewRequiredAttributes must all be present to create a review
	ReviewRequiredAttributes = []string{"user_id", "business_id", "stars"}
	// ReviewUpdateRequiredAttributes must be present on a review update
	ReviewUpdateRequiredAttributes = []string{"stars"}
	// ReviewOptionalAttributes are kept when supplied but never required
	ReviewOptionalAttributes = []string{"review_text"}
	// reviewPatchableAttributes are applied on update only when present
	reviewPatchableAttributes = []string{"user_id", "business_id", "review_text"}
)

// Review is a user's rating of a business. BusinessID refers to a business
// identifier; the reference is checked when the review is created only.
type Review struct {
	UserID     Scalar  `json:"user_id"`
	BusinessID Scalar  `json:"business_id"`
	Stars      float64 `json:"stars"`
	ReviewText *string `json:"review_text,omitempty"`
}

// ReviewPatch carries a review update. Nil fields leave the stored value alone.
type ReviewPatch struct {
	Stars      float64 `json:"stars"`
	UserID     *Scalar `json:"user_id,omitempty"`
	BusinessID *Scalar `json:"business_id,omitempty"`
	ReviewText *string `json:"review_text,omitempty"`
	// ClearReviewText is set when the body carries an explicit null review_text.
	ClearReviewText bool `json:"-"`
}

// DecodeReview validates a create body and builds the review from it.
func DecodeReview(p Payload) (*Review, error) {
	if !Validate(p, ReviewRequiredAttributes) {
		return nil, ErrMissingAttributes
	}
	var r Review
	if err := BuildRecord(p, ReviewRequiredAttributes, ReviewOptionalAttributes...).Decode(&r, "review_text"); err != nil {
		return nil, err
	}
	return &r, nil
}

// DecodeReviewPatch validates an update body. Only stars is required.
func DecodeReviewPatch(p Payload) (*ReviewPatch, error) {
	if !Validate(p, ReviewUpdateRequiredAttributes) {
		return nil, ErrMissingAttributes
	}
	var patch ReviewPatch
	if err := BuildRecord(p, ReviewUpdateRequiredAttributes, reviewPatchableAttributes...).Decode(&patch, "review_text"); err != nil {
		return nil, err
	}
	if raw, ok := p["review_text"]; ok && isNull(raw) {
		patch.ClearReviewText = true
	}
	return &patch, nil
}

// Apply overwrites stars and every attribute the patch carries.
func (r *Review) Apply(patch ReviewPatch) {
	r.Stars = patch.Stars
	if patch.UserID != nil {
		r.UserID = *patch.UserID
	}
	if patch.BusinessID != nil {
		r.BusinessID = *patch.BusinessID
	}
	switch {
	case patch.ClearReviewText:
		r.ReviewText = nil
	case patch.ReviewText != nil:
		text := *patch.ReviewText
		r.ReviewText = &text
	}
}

// ReviewView is the outgoing representation: the stored attributes plus id.
type ReviewView struct {
	ID int64 `json:"id"`
	Review
}

func AttachReviewID(id int64, r Review) ReviewView {
	return ReviewView{ID: id, Review: r}
}

package cataloging

import "github.com/lehigh-university-libraries/coverscan/internal/models"

// Outcome is the result of structured extraction: Extracted or Deferred
type Outcome interface {
	outcome()
}

// Extracted carries metadata produced by the language model
type Extracted struct {
	Record models.MetadataRecord
}

// Deferred means the model produced nothing usable and the caller should fall back
type Deferred struct {
	Reason string
}

func (Extracted) outcome() {}
func (Deferred) outcome()  {}

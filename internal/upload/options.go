package upload

import (
	"webprint-client/internal/failure"
	"webprint-client/internal/gateway"
)

// Options are the print settings sent with a job.
type Options struct {
	Color       bool `json:"color"`
	DoubleSided bool `json:"doubleSided"`
	Staple      bool `json:"staple"`
	Collate     bool `json:"collate"`
	Copies      int  `json:"copies"`
}

// DefaultOptions is one collated, single-sided black and white copy.
func DefaultOptions() Options {
	return Options{Collate: true, Copies: 1}
}

// Validate checks copies and the staple/double-sided exclusion.
func (o Options) Validate() error {
	if o.Copies < 1 {
		return failure.ErrInvalidCopies
	}
	if o.Staple && o.DoubleSided {
		return failure.ErrOptionDisabled
	}
	return nil
}

// CollateEligible reports whether there is more than one copy to collate.
func (o Options) CollateEligible() bool {
	return o.Copies > 1
}

func (o Options) printRequest(fileID string) gateway.PrintRequest {
	return gateway.PrintRequest{
		FileID:      fileID,
		Color:       o.Color,
		DoubleSided: o.DoubleSided,
		Staple:      o.Staple,
		Collate:     o.Collate,
		Copies:      o.Copies,
	}
}

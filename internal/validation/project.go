package validation

import "strings"

// ProjectFields is the raw project submission. A cover file, if any, travels
// beside it as a multipart attachment.
type ProjectFields struct {
	Name        string `form:"name" validate:"required,max=120"`
	Description string `form:"description" validate:"max=2000"`
	CoverURL    string `form:"cover_url" validate:"omitempty,http_url"`
}

type ProjectInput struct {
	Name        string
	Description *string
	CoverURL    *string
}

// Project validates a raw project submission.
func (v *Validator) Project(fields ProjectFields) (*ProjectInput, *Failure) {
	fields.Name = strings.TrimSpace(fields.Name)
	fields.Description = strings.TrimSpace(fields.Description)
	fields.CoverURL = strings.TrimSpace(fields.CoverURL)

	if failure := v.check(fields); failure != nil {
		return nil, failure
	}

	in := &ProjectInput{Name: fields.Name}
	if fields.Description != "" {
		in.Description = &fields.Description
	}
	if fields.CoverURL != "" {
		in.CoverURL = &fields.CoverURL
	}
	return in, nil
}

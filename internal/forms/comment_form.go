package forms

import (
	"net/http"
	"strings"

	"evnt/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type CommentForm struct {
	Username string `json:"username"`
	Comment  string `json:"comment"`

	Errors map[string]string `json:"-"`
}

// CommentFormFromRequest reads only the comment fields. Any event reference
// in the body is ignored; the event comes from the URL.
func CommentFormFromRequest(r *http.Request) CommentForm {
	return CommentForm{
		Username: r.FormValue("username"),
		Comment:  r.FormValue("comment"),
	}
}

func (f *CommentForm) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.Username, validation.Required, validation.Length(1, 80)),
		validation.Field(&f.Comment, validation.Required, validation.Length(1, 2000)),
	)
}

func (f *CommentForm) Clean(eventID string) (models.Comment, error) {
	f.Username = strings.TrimSpace(f.Username)
	f.Comment = strings.TrimSpace(f.Comment)

	if err := f.Validate(); err != nil {
		verr := fromOzzo(err)
		f.Errors = verr.Fields
		return models.Comment{}, verr
	}

	return models.Comment{
		EventID:  eventID,
		Username: f.Username,
		Body:     f.Comment,
	}, nil
}

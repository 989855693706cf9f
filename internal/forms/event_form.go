package forms

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"evnt/internal/slug"
	"evnt/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

type EventForm struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Host        string `json:"host"`
	Venue       string `json:"venue"`
	Date        string `json:"date"`
	TicketPrice string `json:"ticket_price"`
	Description string `json:"description"`
	Private     bool   `json:"private"`
	Tags        string `json:"tags"`

	Errors map[string]string `json:"-"`
}

func EventFormFromRequest(r *http.Request) EventForm {
	private, _ := strconv.ParseBool(r.FormValue("private"))
	if r.FormValue("private") == "on" {
		private = true
	}

	return EventForm{
		Name:        r.FormValue("name"),
		Category:    r.FormValue("category"),
		Host:        r.FormValue("host"),
		Venue:       r.FormValue("venue"),
		Date:        r.FormValue("date"),
		TicketPrice: r.FormValue("ticket_price"),
		Description: r.FormValue("description"),
		Private:     private,
		Tags:        r.FormValue("tags"),
	}
}

// EventFormFromEvent prefills the edit form.
func EventFormFromEvent(ev *models.Event) EventForm {
	in := ev.Input()

	f := EventForm{
		Name:        in.Name,
		Category:    in.CategoryID,
		Host:        in.Host,
		Venue:       in.Venue,
		Description: in.Description,
		Private:     in.Private,
		Tags:        strings.Join(in.TagNames, ", "),
	}
	if !in.Date.IsZero() {
		f.Date = in.Date.Format(models.DateLayout)
	}
	if !in.TicketPrice.IsZero() {
		f.TicketPrice = in.TicketPrice.String()
	}
	return f
}

func (f *EventForm) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.Name, validation.Required, validation.Length(1, 200), validation.By(sluggable)),
		validation.Field(&f.Category, validation.Length(0, 50)),
		validation.Field(&f.Host, validation.Required, validation.Length(1, 200)),
		validation.Field(&f.Venue, validation.Required, validation.Length(1, 200)),
		validation.Field(&f.Date, validation.Required, validation.Date(models.DateLayout)),
		validation.Field(&f.TicketPrice, validation.Length(0, 32), validation.By(nonNegativeDecimal)),
		validation.Field(&f.Description, validation.Length(0, 5000)),
		validation.Field(&f.Tags, validation.Length(0, 500)),
	)
}

// Clean validates the form and returns the sanitized input. On failure the
// form's Errors are filled and a *ValidationError is returned.
func (f *EventForm) Clean() (models.EventInput, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Category = strings.TrimSpace(f.Category)
	f.Host = strings.TrimSpace(f.Host)
	f.Venue = strings.TrimSpace(f.Venue)
	f.Date = strings.TrimSpace(f.Date)
	f.TicketPrice = strings.TrimSpace(f.TicketPrice)
	f.Description = strings.TrimSpace(f.Description)

	if err := f.Validate(); err != nil {
		verr := fromOzzo(err)
		f.Errors = verr.Fields
		return models.EventInput{}, verr
	}

	date, _ := time.Parse(models.DateLayout, f.Date)
	price := decimal.Zero
	if f.TicketPrice != "" {
		price, _ = decimal.NewFromString(f.TicketPrice)
	}

	return models.EventInput{
		Name:        f.Name,
		CategoryID:  f.Category,
		Host:        f.Host,
		Venue:       f.Venue,
		Date:        date.UTC(),
		TicketPrice: price,
		Description: f.Description,
		Private:     f.Private,
		TagNames:    SplitTags(f.Tags),
	}, nil
}

// SetError records a message produced outside of field validation.
func (f *EventForm) SetError(err error) {
	fields := FieldErrors(err)
	if fields == nil {
		return
	}
	if f.Errors == nil {
		f.Errors = map[string]string{}
	}
	for k, v := range fields {
		f.Errors[k] = v
	}
}

// SplitTags parses a comma separated tag list, dropping blanks and names that
// collapse to the same slug.
func SplitTags(raw string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.Join(strings.Fields(part), " ")
		s := slug.Make(name)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, name)
	}
	return out
}

func sluggable(value any) error {
	s, _ := value.(string)
	if s != "" && slug.Make(s) == "" {
		return errors.New("must contain at least one letter or digit")
	}
	return nil
}

func nonNegativeDecimal(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return errors.New("must be a valid amount")
	}
	if d.IsNegative() {
		return errors.New("must not be negative")
	}
	return nil
}

// estimate/session.go
package estimate

import (
	"errors"
	"strconv"
)

// ErrAcknowledgmentRequired is returned when a form session is opened on
// an inbox item the contractor has not yet acknowledged. The message is
// shown to the user as-is.
var ErrAcknowledgmentRequired = errors.New("Acknowledgment Required")

// Request is the identity context of one inbox send. The form's
// identity fields are always bound fresh from here, never from a draft.
type Request struct {
	SendID           int
	HomeownerName    string
	HomeownerContact string
	ProjectName      string
	ProjectAddress   string
	PlotSize         string
	BuiltUpArea      string
	Acknowledged     bool
}

// identityFields are derived from the Request and stay read-only for
// the lifetime of the form.
var identityFields = []string{
	"structured[project_name]",
	"structured[client_name]",
	"structured[client_contact]",
}

// OpenSession creates the single form instance for an inbox item.
// Acknowledgment gates estimate entry: an unacknowledged item gets no
// form at all.
func OpenSession(req Request) (*Form, error) {
	if !req.Acknowledged {
		return nil, ErrAcknowledgmentRequired
	}
	f := NewForm()
	f.Bind("send_id", strconv.Itoa(req.SendID))
	f.Bind("structured[project_name]", req.ProjectName)
	f.Bind("structured[client_name]", req.HomeownerName)
	f.Bind("structured[client_contact]", req.HomeownerContact)
	if req.ProjectAddress != "" {
		f.Set("structured[project_address]", req.ProjectAddress)
	}
	if req.PlotSize != "" {
		f.Set("structured[plot_size]", req.PlotSize)
	}
	if req.BuiltUpArea != "" {
		f.Set("structured[built_up_area]", req.BuiltUpArea)
	}
	return f, nil
}

// IdentityFields lists the field names a draft must never overwrite.
func IdentityFields() []string {
	out := make([]string, len(identityFields))
	copy(out, identityFields)
	return out
}

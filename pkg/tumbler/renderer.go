package tumbler

import "github.com/ukaji3/tumbler-go/pkg/tumbler/models"

// Renderer draws session output. Sessions call it outside their lock, but
// a renderer must not block on session methods from inside these calls.
type Renderer interface {
	// Render shows one slot per column; slots carry their reveal delay.
	Render(frame models.Frame)
	// SetLoading toggles the load affordance while a fetch is in flight.
	SetLoading(loading bool)
	// SetSourceValue shows the source locator in the source field.
	SetSourceValue(source string)
	// ShowError shows a dismissible error message.
	ShowError(message string)
	// ClearError hides the error message.
	ClearError()
}

// NopRenderer discards everything.
type NopRenderer struct{}

func (NopRenderer) Render(models.Frame) {}
func (NopRenderer) SetLoading(bool) {}
func (NopRenderer) SetSourceValue(string) {}
func (NopRenderer) ShowError(string) {}
func (NopRenderer) ClearError() {}

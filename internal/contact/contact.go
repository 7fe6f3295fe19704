// Package contact validates and forwards the storefront contact form.
package contact

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Status classes rendered on the form status line.
const (
	ClassWarning = "status-warning"
	ClassSending = "status-sending"
	ClassSuccess = "status-success"
	ClassError   = "status-error"
)

// Status texts.
const (
	TextMissingFields = "⚠️ Todos los campos son obligatorios."
	TextInvalidEmail  = "⚠️ Ingresá un correo electrónico válido."
	TextSending       = "Enviando mensaje..."
	TextSent          = "✅ ¡Gracias! Tu mensaje fue enviado correctamente."
	TextRejected      = "⚠️ Hubo un problema al enviar el mensaje. Probá nuevamente."
	TextConnection    = "❌ Error de conexión. Revisá tu conexión a internet."
)

// DefaultTimeout bounds a single submission.
const DefaultTimeout = 10 * time.Second

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Status is the outcome shown under the form.
type Status struct {
	Text  string
	Class string
}

// OK reports whether the message was delivered.
func (s Status) OK() bool {
	return s.Class == ClassSuccess
}

// Sending is the status shown while a submission is in flight.
func Sending() Status {
	return Status{Text: TextSending, Class: ClassSending}
}

// Form holds the contact form fields.
type Form struct {
	Nombre  string
	Email   string
	Asunto  string
	Mensaje string
}

// FormFromValues reads a Form from posted values.
func FormFromValues(v url.Values) Form {
	return Form{
		Nombre:  v.Get("nombre"),
		Email:   v.Get("email"),
		Asunto:  v.Get("asunto"),
		Mensaje: v.Get("mensaje"),
	}
}

// Values encodes the form the way it is posted.
func (f Form) Values() url.Values {
	v := url.Values{}
	v.Set("nombre", f.Nombre)
	v.Set("email", f.Email)
	v.Set("asunto", f.Asunto)
	v.Set("mensaje", f.Mensaje)
	return v
}

// Normalize collapses runs of whitespace and trims every field.
func (f Form) Normalize() Form {
	return Form{
		Nombre:  collapse(f.Nombre),
		Email:   collapse(f.Email),
		Asunto:  collapse(f.Asunto),
		Mensaje: collapse(f.Mensaje),
	}
}

// Validate returns the warning status for an incomplete form or a
// malformed email, and ok when the form can be sent.
func (f Form) Validate() (Status, bool) {
	if f.Nombre == "" || f.Email == "" || f.Asunto == "" || f.Mensaje == "" {
		return Status{Text: TextMissingFields, Class: ClassWarning}, false
	}
	if !emailPattern.MatchString(f.Email) {
		return Status{Text: TextInvalidEmail, Class: ClassWarning}, false
	}
	return Status{}, true
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Submitter forwards contact forms to a form-handling endpoint.
type Submitter struct {
	http     *http.Client
	endpoint string
	logger   *zap.Logger
}

// NewSubmitter creates a Submitter posting to endpoint.
func NewSubmitter(endpoint string, timeout time.Duration, logger *zap.Logger) *Submitter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Submitter{
		http:     &http.Client{Timeout: timeout},
		endpoint: endpoint,
		logger:   logger,
	}
}

// Submit normalizes and validates form, then posts it.
func (s *Submitter) Submit(ctx context.Context, form Form) Status {
	form = form.Normalize()
	if status, ok := form.Validate(); !ok {
		return status
	}

	if s.endpoint == "" {
		s.logger.Warn("contact endpoint not configured")
		return Status{Text: TextRejected, Class: ClassWarning}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Values().Encode()))
	if err != nil {
		s.logger.Error("failed to build contact request", zap.Error(err))
		return Status{Text: TextConnection, Class: ClassError}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		s.logger.Error("contact submission failed", zap.Error(err))
		return Status{Text: TextConnection, Class: ClassError}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Warn("contact submission rejected", zap.Int("status", resp.StatusCode))
		return Status{Text: TextRejected, Class: ClassWarning}
	}

	s.logger.Info("contact message sent")
	return Status{Text: TextSent, Class: ClassSuccess}
}

package chrome

// ErrorPage is the backend error page target.
const ErrorPage = "main?act=error"

// Redirector records a redirect target; the HTTP layer performs it.
type Redirector struct {
	target string
}

// NewRedirector returns a redirector with no pending redirect.
func NewRedirector() *Redirector {
	return &Redirector{}
}

// Redirect records target. The last call wins.
func (r *Redirector) Redirect(target string) {
	r.target = target
}

// Target returns the pending redirect target.
func (r *Redirector) Target() string {
	if r == nil {
		return ""
	}
	return r.target
}

// Redirected reports whether a redirect is pending.
func (r *Redirector) Redirected() bool {
	return r.Target() != ""
}

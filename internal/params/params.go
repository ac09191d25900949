// Package params holds shell parameters shared between the REPL and the
// wait engine.
package params

// Params is not safe for concurrent use.
type Params struct {
	status int
}

func New() *Params {
	return &Params{}
}

// SetStatus records the exit status of the last command ($?).
func (p *Params) SetStatus(status int) {
	p.status = status
}

func (p *Params) Status() int {
	return p.status
}

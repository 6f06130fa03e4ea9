package web

import (
	"log/slog"

	"github.com/vbonduro/lostfound/internal/ui"
)

// pagePresenter collects what an edit session reports during one request so
// the handler can render it.
type pagePresenter struct {
	logger   *slog.Logger
	messages []ui.Message
}

func (p *pagePresenter) ShowError(msg string) {
	p.messages = append(p.messages, ui.ErrorMessage(msg))
}

func (p *pagePresenter) ShowSuccess(msg string) {
	p.messages = append(p.messages, ui.SuccessMessage(msg))
}

func (p *pagePresenter) SetBusy(busy bool, label string) {
	p.logger.Debug("busy state", "busy", busy, "label", label)
}

// last returns the most recent message, or nil.
func (p *pagePresenter) last() *ui.Message {
	if len(p.messages) == 0 {
		return nil
	}
	m := p.messages[len(p.messages)-1]
	return &m
}

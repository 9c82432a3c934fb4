package controller

import (
	"github.com/jonathan/resume-analyzer/internal/session"
)

func (c *Controller) onSessionEvent(e session.Event) {
	c.mu.Lock()
	switch e.Kind {
	case session.EventSignedOut:
		c.user = nil
		c.recovery = false
		c.resetLocked()
	case session.EventPasswordRecovery:
		c.user = e.Session
		c.recovery = true
	case session.EventUserUpdated:
		if e.Session != nil {
			c.user = e.Session
		}
		c.recovery = false
	case session.EventSignedIn:
		c.user = e.Session
		if c.bannerKind == ErrorAccess || c.bannerKind == ErrorAuth {
			c.clearBannerLocked()
		}
	}
	c.log.Debug().Str("event", string(e.Kind)).Msg("session event")
	c.publishLocked()
}

package main

import (
	"fmt"
	"io"

	"rollcall/internal/bridge"
	"rollcall/internal/config"
	"rollcall/internal/logging"
	"rollcall/internal/roster"
	"rollcall/internal/selection"
)

// resolveSession picks the session from --session, then --url.
func resolveSession() (roster.Session, error) {
	if sessionID != "" {
		return roster.NewSession(sessionID), nil
	}
	if launchURL != "" {
		return roster.SessionFromURL(launchURL)
	}
	return roster.Session{}, nil
}

func buildSource(c *config.Config, l *logging.Logger) roster.Source {
	remote := roster.NewHTTPSource(c.Source.Endpoint, c.GetSourceTimeout(), l.For(logging.CategorySource))
	return roster.NewSessionSource(remote)
}

// buildHost returns the configured host. Stream hosts write to out.
func buildHost(c *config.Config, out io.Writer, l *logging.Logger) bridge.Host {
	if c.Host.Kind == "webhook" {
		return bridge.NewWebhook(c.Host.WebhookURL, c.GetHostTimeout(), l.For(logging.CategoryBridge))
	}
	return bridge.NewStream(out, l.For(logging.CategoryBridge))
}

func buildManager(c *config.Config, session roster.Session, host bridge.Host, l *logging.Logger) (*selection.Manager, error) {
	matcher, err := c.NewMatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to build matcher: %w", err)
	}
	return selection.New(session, host,
		selection.WithMatcher(matcher),
		selection.WithGroupField(c.GetGroupField()),
		selection.WithLogger(l.For(logging.CategorySelection)),
	), nil
}

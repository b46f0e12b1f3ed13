package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/domain"
)

func tokenCookie(cfg config.CookieConfig, name, value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cfg.Domain,
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		Secure:   cfg.Secure,
		HTTPOnly: true,
		SameSite: cfg.SameSite,
	}
}

// setAuthCookies delivers the token pair as HttpOnly cookies.
func setAuthCookies(c *fiber.Ctx, cfg config.CookieConfig, pair domain.TokenPair) {
	c.Cookie(tokenCookie(cfg, cfg.AccessName, pair.Access.Value, pair.Access.ExpiresAt))
	c.Cookie(tokenCookie(cfg, cfg.RefreshName, pair.Refresh.Value, pair.Refresh.ExpiresAt))
}

// setAccessCookie refreshes the access token cookie only.
func setAccessCookie(c *fiber.Ctx, cfg config.CookieConfig, token domain.IssuedToken) {
	c.Cookie(tokenCookie(cfg, cfg.AccessName, token.Value, token.ExpiresAt))
}

// clearAuthCookies expires both token cookies.
func clearAuthCookies(c *fiber.Ctx, cfg config.CookieConfig) {
	expired := time.Now().Add(-time.Hour)
	c.Cookie(tokenCookie(cfg, cfg.AccessName, "", expired))
	c.Cookie(tokenCookie(cfg, cfg.RefreshName, "", expired))
}

// Package auth проверяет сессионную куку входящих запросов.
// Значение куки — ид сессии плюс HMAC-подпись на session secret;
// сама сессия лежит в БД и проверяется на каждый запрос.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"filevault/internal/domain"
)

type sessionKeeper interface {
	GetByID(ctx context.Context, id string) (*domain.Session, error)
}

// Auth проверяет сессии и формирует сессионные куки.
type Auth struct {
	sessions   sessionKeeper
	cookieName string
	secret     []byte
}

func New(sessions sessionKeeper, cookieName string, secret []byte) *Auth {
	return &Auth{
		sessions:   sessions,
		cookieName: cookieName,
		secret:     secret,
	}
}

// CookieFor выдает подписанную куку для созданной сессии.
func (a *Auth) CookieFor(session *domain.Session) *http.Cookie {
	return &http.Cookie{
		Name:     a.cookieName,
		Value:    session.ID + "." + a.sign(session.ID),
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie возвращает куку, стирающую сессию на клиенте.
func (a *Auth) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     a.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// UserID возвращает ид владельца действующей сессии запроса.
func (a *Auth) UserID(r *http.Request) (uuid.UUID, error) {
	sessionID, err := a.SessionID(r)
	if err != nil {
		return uuid.Nil, err
	}

	session, err := a.sessions.GetByID(r.Context(), sessionID)
	if err != nil {
		return uuid.Nil, domain.ErrUnauthorized
	}

	return session.UserID, nil
}

// SessionID извлекает ид сессии из куки, проверяя подпись.
func (a *Auth) SessionID(r *http.Request) (string, error) {
	cookie, err := r.Cookie(a.cookieName)
	if err != nil {
		return "", domain.ErrUnauthorized
	}

	id, signature, found := strings.Cut(cookie.Value, ".")
	if !found || id == "" {
		return "", domain.ErrUnauthorized
	}

	if !hmac.Equal([]byte(signature), []byte(a.sign(id))) {
		return "", domain.ErrUnauthorized
	}

	return id, nil
}

func (a *Auth) sign(id string) string {
	mac := hmac.New(sha256.New, a.secret)
	fmt.Fprint(mac, id)
	return hex.EncodeToString(mac.Sum(nil))
}

package services

import (
	"context"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

// GoogleIdentity is the verified identity behind a Google sign-in.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
}

// GoogleProvider verifies Google sign-ins
type GoogleProvider interface {
	AuthCodeURL(state string) string
	VerifyIDToken(ctx context.Context, idToken string) (*GoogleIdentity, error)
	ExchangeCode(ctx context.Context, code string) (*GoogleIdentity, error)
}

type GoogleAuth struct {
	oauth *oauth2.Config
}

// NewGoogleAuth returns nil when no client ID is configured.
func NewGoogleAuth(clientID, clientSecret, redirectURL string) *GoogleAuth {
	if clientID == "" {
		return nil
	}
	return &GoogleAuth{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

func (g *GoogleAuth) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// VerifyIDToken validates a Google ID token issued for our client ID
func (g *GoogleAuth) VerifyIDToken(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	payload, err := idtoken.Validate(ctx, idToken, g.oauth.ClientID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	email, _ := payload.Claims["email"].(string)
	verified, _ := payload.Claims["email_verified"].(bool)
	name, _ := payload.Claims["name"].(string)
	if email == "" || !verified {
		return nil, ErrInvalidUserInfo
	}

	return &GoogleIdentity{
		Subject: payload.Subject,
		Email:   strings.ToLower(email),
		Name:    name,
	}, nil
}

// ExchangeCode trades an authorization code for tokens and verifies the returned ID token
func (g *GoogleAuth) ExchangeCode(ctx context.Context, code string) (*GoogleIdentity, error) {
	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, ErrInvalidAuthCode
	}

	idToken, ok := token.Extra("id_token").(string)
	if !ok || idToken == "" {
		return nil, ErrInvalidAuthCode
	}
	return g.VerifyIDToken(ctx, idToken)
}

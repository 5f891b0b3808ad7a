// Package server runs the temporary localhost HTTP server backing the OAuth2
// login flow.
//
// When the user runs the login command, a [CallbackServer] starts on the
// configured host and port, the browser opens the provider's consent page,
// and the redirect lands on /callback. The [OAuthHandler] validates the
// state parameter, exchanges the authorization code for tokens, and delivers
// exactly one [OAuthResult]; the server then shuts down.
package server

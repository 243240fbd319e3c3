// Package auth provides authentication and authorization for wordhoard.
//
// It supports two authentication modes:
//   - "none": no login; every request acts as the seeded local administrator
//   - "local": user accounts with session cookies for the web UI and Bearer
//     tokens for API clients
//
// Set AUTH_MODE to select the mode. In local mode the first account, created
// through /setup or /register, becomes the administrator; later sign-ups are
// readers while AUTH_ALLOW_REGISTRATION is true.
//
//	AUTH_SESSION_SECRET=<base64-32-bytes>  # Auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h
//	AUTH_TOKEN_EXPIRY=720h
//	AUTH_BCRYPT_COST=12
//	AUTH_SECURE_COOKIES=true
//
// Handlers read the acting user with GetUser or GetUserID and pass it
// explicitly into the vocabulary and document services.
package auth

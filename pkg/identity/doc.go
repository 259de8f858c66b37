// Package identity implements the flow collaborators over HTTP against a
// next-auth style identity service:
//
//   - AccountClient posts to /api/auth/signup (flow.AccountCreator);
//   - CredentialsAuthenticator runs the csrf + credentials callback exchange
//     (flow.Authenticator) and keeps the resulting session in a cookie jar.
package identity

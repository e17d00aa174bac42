// Package webadmin provides the browser-facing admin pages.
//
// # Overview
//
// Two pages live under /admin:
//
//   - /admin/login: a sign-in form that posts to the JSON login endpoint
//   - /admin and /admin/: a dashboard with catalog and order counts
//
// # Authentication
//
// Pages sit behind two checks. The edge gate redirects requests that carry
// no session cookie at all. The dashboard then re-verifies the cookie with
// the configured token Verifier and redirects to /admin/login on failure.
// The login page redirects to the dashboard when the cookie already verifies.
//
// # Templates
//
// HTML templates are embedded with go:embed and parsed once in New. Every
// page is rendered inside templates/base.html.
package webadmin

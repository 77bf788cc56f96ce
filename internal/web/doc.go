package web

// Package web exposes the HTTP surface: the download/upload UI, the
// download and cookie-upload endpoints, history and playlist APIs, the
// conversion API, and the admin status page. Handlers translate the domain
// error taxonomy into status codes and never leak cookie contents.

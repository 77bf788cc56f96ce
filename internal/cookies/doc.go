package cookies

// Package cookies implements the cookie-session subsystem: syntactic
// validation of uploaded Netscape-format cookie files and a session-scoped
// store that owns each uploaded file, expires entries after a fixed window,
// and hands dispatched downloads a private snapshot copy so in-flight work
// keeps the file it started with.

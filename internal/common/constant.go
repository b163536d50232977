package common

// FallbackFileName is used in Content-Disposition when the remote object
// carries no name.
const FallbackFileName = "download"

// UsageText is returned by the root endpoint and for unknown paths.
const UsageText = "Usage: GET /dl?link=<url-encoded MEGA file link>\n"

package common

// RootDirectoryName is the reserved name of every user's implicit root
// directory. It always exists and is never stored.
const RootDirectoryName = "root"

// AuthorizationHeaderName carries "Bearer <token>" on HTTP requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in AuthorizationHeaderName.
const BearerPrefix = "Bearer "

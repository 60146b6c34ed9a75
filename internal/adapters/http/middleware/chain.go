package middleware

import "net/http"

// Chain folds a list of middleware into one. The first entry ends up
// outermost, so it sees the request first and the response last:
//
//	Chain(Recovery, RequestID, Logging)(h) == Recovery(RequestID(Logging(h)))
func Chain(mws ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			h = mws[i](h)
		}
		return h
	}
}

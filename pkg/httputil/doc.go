// Package httputil provides HTTP helpers shared by the data providers.
//
// # Retry
//
// [Retry] re-runs an operation with exponential backoff, but only for errors
// explicitly marked transient with [Retryable] (network failures, 5xx
// responses). Everything else, including malformed payloads and 4xx statuses,
// is returned on the first attempt:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
//
// Defaults are 3 attempts starting at 1 second and doubling.
//
// # Client
//
// [NewHTTPClient] returns the *http.Client used by providers, with a bounded
// timeout.
package httputil

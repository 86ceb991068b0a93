// Package httputil provides the HTTP plumbing shared by service clients.
//
// # Retry
//
// [Retry] re-runs an operation with exponential backoff. Only errors wrapped
// in [RetryableError] are retried:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    defer resp.Body.Close()
//	    return httputil.CheckResponse(resp)
//	})
//
// [CheckResponse] turns a non-2xx response into a [StatusError], wrapped as
// retryable for 429 and 5xx statuses.
package httputil

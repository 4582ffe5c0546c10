// Package httputil provides the HTTP plumbing used to download basemap
// tiles.
//
// # Overview
//
//   - [Client]: GET requests with default headers, response caching
//     through a [cache.Cache] and automatic retry
//   - [Retry]: exponential backoff for operations returning [RetryableError]
//
// # Retry
//
// [Retry] repeats an operation for transient failures only:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses, honouring Retry-After up to 30 seconds
//
// A 404 becomes a NOT_FOUND error and is returned immediately.
//
// # Caching
//
// [Client.GetBytes] consults the cache before touching the network and
// stores successful bodies with the client's TTL:
//
//	c, _ := cache.NewFileCache("")
//	client := httputil.NewClient(c, 30*24*time.Hour, map[string]string{
//	    "User-Agent": "accimap/1.0",
//	})
//	png, err := client.GetBytes(ctx, "tile:osm:9/281/175", url)
//
// Cache read and write failures degrade to uncached requests.
package httputil

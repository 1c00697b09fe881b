// Package google calls Google's REST APIs on behalf of a local user.
//
// Every request carries the user's stored access token. A request rejected
// for expired credentials triggers one synchronous refresh through the
// token endpoint, after which the original request is sent again exactly
// once. Listings are consumed through Paginator, which follows
// nextPageToken until the provider stops returning one.
package google
